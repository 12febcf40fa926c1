package nlu

import (
	"testing"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

func newTestExtractor() *Extractor {
	return NewExtractor("XAF", logger.Nop())
}

func TestExtractAmountAndCurrency(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		text         string
		wantAmount   string
		wantCurrency string
	}{
		{"send 100 euros to Paul", "100", "EUR"},
		{"transfer 1500 fcfa", "1500", "XAF"},
		{"envoyer 2000 francs", "2000", "XAF"},
		{"send 50.5 EUR", "50.5", "EUR"},
		{"transfer 1000 to marie", "1000", "XAF"},
		{"withdraw 250", "250", "XAF"},
	}

	for _, tt := range tests {
		got := e.Extract(tt.text)
		if got[models.EntityAmount] != tt.wantAmount {
			t.Errorf("Extract(%q) amount = %q, want %q", tt.text, got[models.EntityAmount], tt.wantAmount)
		}
		if got[models.EntityCurrency] != tt.wantCurrency {
			t.Errorf("Extract(%q) currency = %q, want %q", tt.text, got[models.EntityCurrency], tt.wantCurrency)
		}
	}
}

func TestParseAmountSeparators(t *testing.T) {
	// Every spelling of ten thousand five hundred must parse identically.
	tests := []struct {
		raw  string
		want float64
	}{
		{"10500", 10500},
		{"10 500", 10500},
		{"10,500", 10500},
		{"10.500", 10500},
		{"10500.50", 10500.50},
		{"10 500,50", 10500.50},
		{"10,500.50", 10500.50},
		{"1,234,567", 1234567},
	}

	for _, tt := range tests {
		got, ok := ParseAmount(tt.raw)
		if !ok {
			t.Errorf("ParseAmount(%q) failed", tt.raw)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseAmountRejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "0", "-5"} {
		if v, ok := ParseAmount(raw); ok {
			t.Errorf("ParseAmount(%q) = %v, want failure", raw, v)
		}
	}
}

func TestExtractRecipient(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		text string
		want string
	}{
		{"send 100 to Paul", "Paul"},
		{"transfer money to Marie Dupont", "Marie Dupont"},
		{"envoyer 500 à Jean", "Jean"},
	}

	for _, tt := range tests {
		got := e.Extract(tt.text)
		if got[models.EntityRecipient] != tt.want {
			t.Errorf("Extract(%q) recipient = %q, want %q", tt.text, got[models.EntityRecipient], tt.want)
		}
	}
}

func TestExtractIBAN(t *testing.T) {
	e := newTestExtractor()

	got := e.Extract("add beneficiary with iban FR76 3000 6000 0112 3456 7890 189")
	want := "FR7630006000011234567890189"
	if got[models.EntityIBAN] != want {
		t.Errorf("iban = %q, want %q", got[models.EntityIBAN], want)
	}
}

func TestExtractPINEntity(t *testing.T) {
	e := newTestExtractor()

	got := e.Extract("my pin is 1234")
	if got[models.EntityPIN] != "1234" {
		t.Errorf("pin = %q, want 1234", got[models.EntityPIN])
	}
}

func TestExtractBiller(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		text string
		want string
	}{
		{"pay my eneo bill", "ENEO"},
		{"payer ma facture canal plus", "CANALPLUS"},
		{"pay 5000 for camwater", "CAMWATER"},
	}

	for _, tt := range tests {
		got := e.Extract(tt.text)
		if got[models.EntityBiller] != tt.want {
			t.Errorf("Extract(%q) biller = %q, want %q", tt.text, got[models.EntityBiller], tt.want)
		}
	}
}

func TestValidateRequiredEntities(t *testing.T) {
	e := newTestExtractor()

	ok, missing := e.Validate(models.IntentTransfer, models.Entities{
		models.EntityAmount:    "100",
		models.EntityRecipient: "Paul",
	})
	if !ok || len(missing) != 0 {
		t.Errorf("complete transfer entities reported missing %v", missing)
	}

	ok, missing = e.Validate(models.IntentTransfer, models.Entities{
		models.EntityAmount: "100",
	})
	if ok {
		t.Fatal("transfer without recipient reported valid")
	}
	if len(missing) != 1 || missing[0] != models.EntityRecipient {
		t.Errorf("missing = %v, want exactly [recipient]", missing)
	}

	// Intents with no required entities always validate.
	ok, missing = e.Validate(models.IntentBalanceInquiry, models.Entities{})
	if !ok || len(missing) != 0 {
		t.Errorf("balance inquiry reported missing %v", missing)
	}
}

func TestExtractPhone(t *testing.T) {
	if got, ok := ExtractPhone("my number is 6 71 23 45 67"); !ok || got != "671234567" {
		t.Errorf("ExtractPhone = %q, %v", got, ok)
	}
	if _, ok := ExtractPhone("1234567"); ok {
		t.Error("ExtractPhone accepted fewer than 8 digits")
	}
}

func TestExtractPIN(t *testing.T) {
	if got, ok := ExtractPIN(" 12345 "); !ok || got != "12345" {
		t.Errorf("ExtractPIN = %q, %v", got, ok)
	}
	for _, bad := range []string{"123", "1234567", "12a4"} {
		if _, ok := ExtractPIN(bad); ok {
			t.Errorf("ExtractPIN(%q) accepted", bad)
		}
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"my name is Marie Ngo", "Marie Ngo"},
		{"um I'm paul biya", "Paul Biya"},
		{"je m'appelle Aissatou Bello", "Aissatou Bello"},
		{"Jean-Pierre Kamga", "Jean-pierre Kamga"},
	}
	for _, tt := range tests {
		got, ok := ExtractName(tt.text)
		if !ok {
			t.Errorf("ExtractName(%q) failed", tt.text)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractName(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}

	for _, bad := range []string{"", "1234", "a b c d e f g"} {
		if got, ok := ExtractName(bad); ok {
			t.Errorf("ExtractName(%q) = %q, want failure", bad, got)
		}
	}
}
