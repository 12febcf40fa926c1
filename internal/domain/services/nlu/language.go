package nlu

import "strings"

// Supported languages. English is the mandatory fallback everywhere a
// per-language lookup can miss.
const (
	LanguageEnglish = "en"
	LanguageFrench  = "fr"
)

// French marker words that rarely appear in English utterances.
var frenchMarkers = map[string]struct{}{
	"je": {}, "tu": {}, "vous": {}, "nous": {}, "il": {}, "elle": {},
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {},
	"est": {}, "suis": {}, "veux": {}, "voudrais": {}, "peux": {},
	"mon": {}, "ma": {}, "mes": {}, "pour": {}, "avec": {}, "dans": {},
	"argent": {}, "compte": {}, "solde": {}, "virement": {}, "retrait": {},
	"envoyer": {}, "retirer": {}, "creer": {}, "créer": {}, "facture": {},
	"bonjour": {}, "bonsoir": {}, "salut": {}, "merci": {}, "oui": {},
	"non": {}, "quoi": {}, "combien": {}, "pas": {}, "que": {}, "qui": {},
}

// English marker words used to break near-ties in mixed utterances.
var englishMarkers = map[string]struct{}{
	"i": {}, "you": {}, "my": {}, "me": {}, "the": {}, "a": {}, "an": {},
	"is": {}, "am": {}, "are": {}, "want": {}, "would": {}, "can": {},
	"to": {}, "for": {}, "with": {}, "in": {}, "of": {},
	"money": {}, "account": {}, "balance": {}, "transfer": {}, "withdraw": {},
	"send": {}, "create": {}, "check": {}, "bill": {}, "please": {},
	"hello": {}, "hi": {}, "thanks": {}, "yes": {}, "no": {}, "what": {},
	"how": {}, "much": {},
}

// DetectLanguage guesses between French and English by counting marker
// words. English wins ties and empty input; accented characters count as a
// French signal on their own.
func DetectLanguage(text string) string {
	lowered := strings.ToLower(text)
	words := wordRe.FindAllString(lowered, -1)
	if len(words) == 0 {
		return LanguageEnglish
	}

	var fr, en int
	for _, w := range words {
		if _, ok := frenchMarkers[w]; ok {
			fr++
		}
		if _, ok := englishMarkers[w]; ok {
			en++
		}
	}

	if strings.ContainsAny(lowered, "àâçéèêëîïôùûü") {
		fr++
	}

	if fr > en {
		return LanguageFrench
	}
	return LanguageEnglish
}
