package nlu

import (
	"testing"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

func newTestClassifier() *Classifier {
	return NewClassifier(0.4, logger.Nop())
}

func TestClassifyIntents(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text string
		want models.Intent
	}{
		{"I want to send money to Paul", models.IntentTransfer},
		{"faire un virement", models.IntentTransfer},
		{"I would like to withdraw money please", models.IntentWithdrawal},
		{"je veux retirer de l'argent", models.IntentWithdrawal},
		{"top up my account with 5000", models.IntentTopUp},
		{"recharger mon compte", models.IntentTopUp},
		{"what is my balance", models.IntentBalanceInquiry},
		{"quel est mon solde", models.IntentBalanceInquiry},
		{"show me my transaction history", models.IntentTransactionHistory},
		{"I want to create account", models.IntentAccountCreation},
		{"je veux creer un compte", models.IntentAccountCreation},
		{"pay my bill for eneo", models.IntentPayBill},
		{"payer ma facture", models.IntentPayBill},
		{"add a beneficiary", models.IntentAddBeneficiary},
		{"block my card it was stolen", models.IntentBlockCard},
		{"what is my iban", models.IntentViewBankDetails},
		{"raise my limit", models.IntentChangeLimit},
		{"show dashboard", models.IntentDashboard},
		{"reset my password", models.IntentPasswordReset},
		{"change my password", models.IntentPasswordChange},
		{"link whatsapp", models.IntentWhatsAppLink},
		{"hello", models.IntentGreeting},
		{"bonjour", models.IntentGreeting},
		{"goodbye", models.IntentGoodbye},
		{"yes", models.IntentConfirmation},
		{"oui", models.IntentConfirmation},
		{"no", models.IntentDenial},
	}

	for _, tt := range tests {
		got := c.Classify(tt.text)
		if got.Intent != tt.want {
			t.Errorf("Classify(%q) = %s (%.2f), want %s", tt.text, got.Intent, got.Confidence, tt.want)
		}
		if got.Confidence < 0.4 {
			t.Errorf("Classify(%q) confidence %.2f below acceptance threshold", tt.text, got.Confidence)
		}
	}
}

func TestClassifyBlockedPhrases(t *testing.T) {
	c := newTestClassifier()

	for _, text := range []string{
		"what is the weather today",
		"tell me a joke",
		"quelle est la meteo",
	} {
		got := c.Classify(text)
		if got.Intent != models.IntentOffTopic {
			t.Errorf("Classify(%q) = %s, want off_topic", text, got.Intent)
		}
		if got.Confidence != 0.9 {
			t.Errorf("Classify(%q) confidence = %.2f, want 0.9", text, got.Confidence)
		}
	}
}

func TestClassifyFallback(t *testing.T) {
	c := newTestClassifier()

	for _, text := range []string{
		"",
		"hmm let me think about something",
		"xyzzy plugh",
	} {
		got := c.Classify(text)
		if got.Intent != models.IntentGeneralSupport {
			t.Errorf("Classify(%q) = %s, want general_support", text, got.Intent)
		}
		if got.Confidence != fallbackSupportScore {
			t.Errorf("Classify(%q) confidence = %.2f, want %.2f", text, got.Confidence, fallbackSupportScore)
		}
	}
}

func TestClassifyShortUtteranceBoost(t *testing.T) {
	c := newTestClassifier()

	short := c.Classify("withdraw")
	long := c.Classify("i think maybe later today i could possibly withdraw something somewhere")

	if short.Intent != models.IntentWithdrawal {
		t.Fatalf("short utterance classified as %s", short.Intent)
	}
	if long.Intent != models.IntentWithdrawal {
		t.Fatalf("long utterance classified as %s", long.Intent)
	}
	if short.Confidence <= long.Confidence {
		t.Errorf("short utterance confidence %.2f not boosted over long %.2f", short.Confidence, long.Confidence)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := newTestClassifier()

	const text = "send money to marie"
	first := c.Classify(text)
	for i := 0; i < 50; i++ {
		got := c.Classify(text)
		if got != first {
			t.Fatalf("run %d: Classify(%q) = %+v, first run %+v", i, text, got, first)
		}
	}
}

func TestClassifyKeywordIsWholeWord(t *testing.T) {
	c := newTestClassifier()

	// "notransfer" must not match the "transfer" keyword.
	got := c.Classify("abcnotransferxyz gibberish utterance here indeed")
	if got.Intent == models.IntentTransfer {
		t.Errorf("substring matched as whole-word keyword: %+v", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"je veux envoyer de l'argent", LanguageFrench},
		{"quel est mon solde", LanguageFrench},
		{"bonjour", LanguageFrench},
		{"I want to send money", LanguageEnglish},
		{"check my balance please", LanguageEnglish},
		{"hello", LanguageEnglish},
		{"", LanguageEnglish},
		{"12345", LanguageEnglish},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}
