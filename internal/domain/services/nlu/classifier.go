package nlu

import (
	"regexp"
	"strings"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// Scoring weights. Phrase matches dominate, keywords carry the bulk of
// everyday utterances, context words only break ties.
const (
	phraseWeight         = 0.8
	keywordWeight        = 0.5
	contextWeight        = 0.2
	shortUtteranceBoost  = 0.3
	shortUtteranceWords  = 4
	offTopicConfidence   = 0.9
	fallbackSupportScore = 0.5
)

// intentPattern is one row of the classification table. Phrases are matched
// as substrings, keywords as whole words, context words add a small bonus
// when they co-occur with a keyword or phrase hit.
type intentPattern struct {
	intent   models.Intent
	phrases  []string
	keywords []string
	context  []string
}

// intentPatterns is evaluated in order; on a tie the earlier row wins, which
// keeps classification deterministic.
var intentPatterns = []intentPattern{
	{
		intent: models.IntentAccountCreation,
		phrases: []string{
			"create account", "open account", "open an account", "new account",
			"sign up", "register me", "creer un compte", "créer un compte",
			"ouvrir un compte", "nouveau compte", "je veux un compte",
		},
		keywords: []string{"create", "open", "register", "signup", "creer", "créer", "ouvrir", "inscription", "inscrire"},
		context:  []string{"account", "compte", "new", "nouveau"},
	},
	{
		intent: models.IntentTransfer,
		phrases: []string{
			"send money", "transfer money", "make a transfer", "wire money",
			"envoyer de l'argent", "envoyer argent", "faire un virement",
			"faire un transfert", "transferer de l'argent", "transférer de l'argent",
		},
		keywords: []string{"transfer", "send", "wire", "virement", "transfert", "envoyer", "envoie", "transferer", "transférer"},
		context:  []string{"money", "argent", "to", "beneficiary", "bénéficiaire", "recipient"},
	},
	{
		intent: models.IntentWithdrawal,
		phrases: []string{
			"withdraw money", "cash out", "take out money", "make a withdrawal",
			"retirer de l'argent", "retirer argent", "faire un retrait", "je veux retirer",
		},
		keywords: []string{"withdraw", "withdrawal", "retrait", "retirer", "cashout"},
		context:  []string{"money", "cash", "argent", "atm"},
	},
	{
		intent: models.IntentTopUp,
		phrases: []string{
			"top up", "topup my account", "add money", "deposit money", "recharge my account",
			"recharger mon compte", "faire un depot", "faire un dépôt", "deposer de l'argent", "déposer de l'argent",
		},
		keywords: []string{"topup", "deposit", "recharge", "recharger", "depot", "dépôt", "deposer", "déposer", "alimenter"},
		context:  []string{"account", "compte", "money", "argent"},
	},
	{
		intent: models.IntentBalanceInquiry,
		phrases: []string{
			"check my balance", "what is my balance", "how much do i have",
			"how much money do i have", "mon solde", "quel est mon solde",
			"consulter mon solde", "combien j'ai", "combien il me reste",
		},
		keywords: []string{"balance", "solde"},
		context:  []string{"check", "account", "compte", "much", "combien"},
	},
	{
		intent: models.IntentTransactionHistory,
		phrases: []string{
			"transaction history", "my transactions", "recent transactions",
			"last transactions", "historique des transactions", "mes transactions",
			"mes dernieres operations", "mes dernières opérations",
		},
		keywords: []string{"history", "transactions", "historique", "operations", "opérations", "statement", "releve", "relevé"},
		context:  []string{"recent", "last", "my", "mes", "dernieres", "dernières"},
	},
	{
		intent: models.IntentPayBill,
		phrases: []string{
			"pay my bill", "pay a bill", "pay the bill", "payer ma facture",
			"payer une facture", "regler ma facture", "régler ma facture",
		},
		keywords: []string{"bill", "facture", "biller"},
		context:  []string{"pay", "payer", "electricity", "water", "eneo", "camwater", "canal", "orange"},
	},
	{
		intent: models.IntentAddBeneficiary,
		phrases: []string{
			"add beneficiary", "add a beneficiary", "new beneficiary", "save this recipient",
			"ajouter un beneficiaire", "ajouter un bénéficiaire", "nouveau beneficiaire", "nouveau bénéficiaire",
		},
		keywords: []string{"beneficiary", "beneficiaire", "bénéficiaire"},
		context:  []string{"add", "new", "ajouter", "nouveau", "save", "enregistrer"},
	},
	{
		intent: models.IntentBlockCard,
		phrases: []string{
			"block my card", "freeze my card", "my card was stolen", "i lost my card",
			"bloquer ma carte", "ma carte est volee", "ma carte est volée", "j'ai perdu ma carte",
		},
		keywords: []string{"block", "freeze", "stolen", "bloquer", "volee", "volée", "opposition"},
		context:  []string{"card", "carte", "lost", "perdu"},
	},
	{
		intent: models.IntentViewBankDetails,
		phrases: []string{
			"my bank details", "my account details", "my iban", "what is my iban",
			"mes coordonnees bancaires", "mes coordonnées bancaires", "mon iban", "mon rib",
		},
		keywords: []string{"iban", "bic", "rib", "details", "coordonnees", "coordonnées"},
		context:  []string{"bank", "account", "bancaires", "compte", "my", "mon"},
	},
	{
		intent: models.IntentChangeLimit,
		phrases: []string{
			"change my limit", "raise my limit", "increase my limit", "lower my limit",
			"changer mon plafond", "augmenter mon plafond", "modifier ma limite",
		},
		keywords: []string{"limit", "plafond", "limite"},
		context:  []string{"change", "raise", "increase", "daily", "changer", "augmenter", "journalier"},
	},
	{
		intent: models.IntentDashboard,
		phrases: []string{
			"show dashboard", "show me the dashboard", "see the stats", "group summary",
			"voir le tableau de bord", "tableau de bord", "voir les statistiques",
		},
		keywords: []string{"dashboard", "stats", "statistics", "statistiques", "summary", "resume", "résumé"},
		context:  []string{"show", "view", "voir", "group", "groupement"},
	},
	{
		intent: models.IntentViewAccount,
		phrases: []string{
			"view my account", "see my account", "my account info", "account information",
			"voir mon compte", "consulter mon compte", "informations de mon compte",
		},
		keywords: []string{"view", "consulter"},
		context:  []string{"account", "compte", "info", "information"},
	},
	{
		intent: models.IntentPasswordReset,
		phrases: []string{
			"reset my password", "forgot my password", "i forgot my password",
			"reinitialiser mon mot de passe", "réinitialiser mon mot de passe",
			"mot de passe oublie", "mot de passe oublié",
		},
		keywords: []string{"reset", "forgot", "reinitialiser", "réinitialiser", "oublie", "oublié"},
		context:  []string{"password", "passe", "pin"},
	},
	{
		intent: models.IntentPasswordChange,
		phrases: []string{
			"change my password", "update my password", "changer mon mot de passe",
			"modifier mon mot de passe",
		},
		keywords: []string{"change", "update", "changer", "modifier"},
		context:  []string{"password", "passe", "pin"},
	},
	{
		intent: models.IntentWhatsAppLink,
		phrases: []string{
			"link whatsapp", "link my whatsapp", "connect whatsapp", "use whatsapp",
			"lier whatsapp", "connecter whatsapp", "utiliser whatsapp",
		},
		keywords: []string{"whatsapp"},
		context:  []string{"link", "connect", "lier", "connecter", "number", "numero", "numéro"},
	},
	{
		intent: models.IntentGreeting,
		phrases: []string{
			"good morning", "good afternoon", "good evening", "bonjour", "bonsoir", "salut",
		},
		keywords: []string{"hello", "hi", "hey", "bonjour", "bonsoir", "salut", "coucou"},
	},
	{
		intent: models.IntentGoodbye,
		phrases: []string{
			"see you later", "talk to you later", "a bientot", "à bientôt", "au revoir", "a plus tard",
		},
		keywords: []string{"bye", "goodbye", "revoir", "bientot", "bientôt", "ciao"},
	},
	{
		intent:  models.IntentConfirmation,
		phrases: []string{"yes please", "go ahead", "that's right", "c'est bon", "je confirme", "d'accord"},
		keywords: []string{
			"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "correct",
			"oui", "ouais", "confirme", "daccord", "exact",
		},
	},
	{
		intent:  models.IntentDenial,
		phrases: []string{"no thanks", "not now", "cancel that", "pas maintenant", "laisse tomber"},
		keywords: []string{
			"no", "nope", "cancel", "stop", "wrong", "non", "annule", "annuler", "arrete", "arrête",
		},
	},
}

// blockedPhrases short-circuit to OffTopic; the assistant only talks banking.
var blockedPhrases = []string{
	"weather", "meteo", "météo",
	"tell me a joke", "raconte une blague", "joke",
	"recipe", "recette",
	"football", "match",
	"who are you", "qui es tu", "qui es-tu",
	"what can you do",
	"sing", "chante",
	"politics", "politique",
	"news", "actualites", "actualités",
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}']+`)

// Classifier maps a cleaned utterance to one intent of the closed set. It is
// rule-based over static tables, so identical input always yields identical
// output.
type Classifier struct {
	acceptThreshold float64
	logger          *logger.Logger
}

// NewClassifier creates a classifier that rejects matches scoring below
// acceptThreshold and falls back to general support.
func NewClassifier(acceptThreshold float64, log *logger.Logger) *Classifier {
	return &Classifier{
		acceptThreshold: acceptThreshold,
		logger:          log.WithComponent("intent-classifier"),
	}
}

// Classify scores the utterance against every intent pattern and returns the
// best match, or GeneralSupport when nothing clears the threshold.
func (c *Classifier) Classify(text string) models.Classification {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return models.Classification{Intent: models.IntentGeneralSupport, Confidence: fallbackSupportScore}
	}

	for _, blocked := range blockedPhrases {
		if strings.Contains(lowered, blocked) {
			return models.Classification{Intent: models.IntentOffTopic, Confidence: offTopicConfidence}
		}
	}

	words := wordRe.FindAllString(lowered, -1)
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}
	isShort := len(words) > 0 && len(words) <= shortUtteranceWords

	best := models.Classification{Intent: models.IntentGeneralSupport}
	for _, row := range intentPatterns {
		score := scorePattern(row, lowered, wordSet, isShort)
		if score > best.Confidence {
			best.Confidence = score
			best.Intent = row.intent
		}
	}

	if best.Confidence < c.acceptThreshold {
		c.logger.Debug().
			Str("best_intent", string(best.Intent)).
			Float64("score", best.Confidence).
			Msg("classification below threshold, falling back to general support")
		return models.Classification{Intent: models.IntentGeneralSupport, Confidence: fallbackSupportScore}
	}

	c.logger.Debug().
		Str("intent", string(best.Intent)).
		Float64("confidence", best.Confidence).
		Msg("intent classified")
	return best
}

func scorePattern(row intentPattern, lowered string, wordSet map[string]struct{}, isShort bool) float64 {
	var score float64
	matched := false

	for _, phrase := range row.phrases {
		if strings.Contains(lowered, phrase) {
			score = phraseWeight
			matched = true
			break
		}
	}

	if !matched {
		for _, kw := range row.keywords {
			if _, ok := wordSet[kw]; ok {
				score = keywordWeight
				matched = true
				if isShort {
					score += shortUtteranceBoost
				}
				break
			}
		}
	}

	if matched {
		for _, ctx := range row.context {
			if _, ok := wordSet[ctx]; ok {
				score += contextWeight
				break
			}
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
