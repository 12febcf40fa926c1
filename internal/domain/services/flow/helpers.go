package flow

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/nlu"
)

var yesWords = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "sure": {}, "ok": {}, "okay": {},
	"confirm": {}, "correct": {}, "oui": {}, "ouais": {}, "daccord": {},
	"d'accord": {}, "confirme": {}, "exact": {}, "go": {},
}

var noWords = map[string]struct{}{
	"no": {}, "nope": {}, "non": {}, "cancel": {}, "stop": {},
	"annule": {}, "annuler": {}, "wrong": {}, "faux": {},
}

// parseYesNo interprets a confirmation answer. ok is false when the input is
// neither a clear yes nor a clear no.
func parseYesNo(input string) (yes bool, ok bool) {
	for _, w := range strings.Fields(strings.ToLower(strings.TrimSpace(input))) {
		w = strings.Trim(w, ".,!?")
		if _, found := yesWords[w]; found {
			return true, true
		}
		if _, found := noWords[w]; found {
			return false, true
		}
	}
	return false, false
}

var numberRe = regexp.MustCompile(`\d[\d\s\x{00a0}]*(?:[,.]\d+)?`)

// parseAmount finds the first number in free text and normalizes it.
func parseAmount(input string) (float64, bool) {
	m := numberRe.FindString(input)
	if m == "" {
		return 0, false
	}
	return nlu.ParseAmount(m)
}

var digitsRe = regexp.MustCompile(`\d{1,3}`)

// parseAge accepts a bare or embedded 1-3 digit age.
func parseAge(input string) (int, bool) {
	m := digitsRe.FindString(input)
	if m == "" {
		return 0, false
	}
	age, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return age, true
}

// parseSex maps free-text gender answers to "M" or "F".
func parseSex(input string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "m", "male", "man", "homme", "h", "masculin":
		return "M", true
	case "f", "female", "woman", "femme", "féminin", "feminin":
		return "F", true
	}
	return "", false
}

// formatAmount renders an amount without trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
