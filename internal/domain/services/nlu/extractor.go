// Package nlu turns cleaned free-text utterances into intents and entities.
// All matching is pattern-based and deterministic: fixed tables, no model
// calls, identical output for identical input.
package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// billerProviders are the bill providers recognized by fuzzy matching, in
// detection order. Multi-word variants precede their prefixes.
var billerProviders = []string{
	"canal plus",
	"canal+",
	"canal",
	"orange",
	"eneo",
	"camwater",
	"edf",
}

// entityRule is one ordered pattern list for an entity type. The first
// matching pattern wins.
type entityRule struct {
	entity   string
	patterns []*regexp.Regexp
}

var entityRules = []entityRule{
	{
		entity: models.EntityAmount,
		patterns: []*regexp.Regexp{
			// 10 000, 10,000.50 followed by a currency marker
			regexp.MustCompile(`(?i)(\d[\d\s\x{00a0}]*(?:[,.]\d+)?)\s*(?:euros?|eur|€|francs?|fcfa|f\s*cfa|xaf|xof|usd|dollars?|\$)`),
			// currency marker first: XAF 1000, $100
			regexp.MustCompile(`(?i)(?:xaf|xof|fcfa|eur|€|\$)\s*(\d[\d\s\x{00a0}]*(?:[,.]\d+)?)`),
			// bare number ahead of a preposition: "send 1000 to paul"
			regexp.MustCompile(`(?i)(\d[\d\s\x{00a0}]*(?:[,.]\d+)?)\s+(?:to|for|pour|à|a|vers|chez)\b`),
			// bare number
			regexp.MustCompile(`(\d[\d\s\x{00a0}]*(?:[,.]\d+)?)`),
		},
	},
	{
		entity: models.EntityCurrency,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(eur|euros?|€)`),
			regexp.MustCompile(`(?i)\b(fcfa|f\s*cfa|francs?|xaf|xof)\b`),
			regexp.MustCompile(`(?i)(\busd\b|\bdollars?\b|\$)`),
		},
	},
	{
		entity: models.EntityRecipient,
		patterns: []*regexp.Regexp{
			// "to Paul", "à Marie Dupont", "for David"
			regexp.MustCompile(`(?:to|for|à|pour|vers)\s+([A-ZÀ-Ÿ][a-zà-ÿ]+(?:\s+[A-ZÀ-Ÿ][a-zà-ÿ]+)?)`),
			regexp.MustCompile(`(?i)(?:beneficiary|bénéficiaire|recipient|destinataire)\s+([A-Za-zÀ-ÿ]+(?:\s+[A-Za-zÀ-ÿ]+)?)`),
		},
	},
	{
		entity: models.EntityIBAN,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b([A-Z]{2}\d{2}(?:\s?[A-Z0-9]{4}){4,7}(?:\s?[A-Z0-9]{1,3})?)\b`),
		},
	},
	{
		entity: models.EntityDate,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`),
			regexp.MustCompile(`(?i)\b(today|tomorrow|yesterday|aujourd'hui|demain|hier)\b`),
		},
	},
	{
		entity: models.EntityPIN,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:pin|code)\s*(?:is|:)?\s*(\d{4,6})\b`),
		},
	},
	{
		entity: models.EntityBiller,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:facture|bill)\s+([a-zA-ZÀ-ÿ+ ]+)`),
		},
	},
}

// requiredEntities is the static required-field table per intent. Intents not
// listed require nothing.
var requiredEntities = map[models.Intent][]string{
	models.IntentTransfer:       {models.EntityAmount, models.EntityRecipient},
	models.IntentPayBill:        {models.EntityAmount, models.EntityBiller},
	models.IntentAddBeneficiary: {models.EntityRecipient},
	models.IntentChangeLimit:    {models.EntityAmount},
}

// Extractor pulls structured entities out of cleaned text using ordered
// pattern rules. It is stateless; extraction is a pure function of the input
// text and the static tables.
type Extractor struct {
	defaultCurrency string
	logger          *logger.Logger
}

// NewExtractor creates an entity extractor. Amounts with no currency marker
// default to defaultCurrency.
func NewExtractor(defaultCurrency string, log *logger.Logger) *Extractor {
	return &Extractor{
		defaultCurrency: defaultCurrency,
		logger:          log.WithComponent("entity-extractor"),
	}
}

// Extract returns all entities found in text, normalized.
func (e *Extractor) Extract(text string) models.Entities {
	entities := models.Entities{}

	for _, rule := range entityRules {
		for _, p := range rule.patterns {
			m := p.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			raw := m[0]
			if len(m) > 1 {
				raw = m[1]
			}
			entities[rule.entity] = strings.TrimSpace(raw)
			break
		}
	}

	if _, ok := entities[models.EntityBiller]; !ok {
		if provider := detectBillerProvider(text); provider != "" {
			entities[models.EntityBiller] = provider
		}
	}

	normalized := e.normalize(entities)

	e.logger.Debug().Interface("entities", normalized).Msg("entities extracted")
	return normalized
}

// Validate checks that all required entities for the intent are present and
// reports exactly the missing keys.
func (e *Extractor) Validate(intent models.Intent, entities models.Entities) (bool, []string) {
	var missing []string
	for _, key := range requiredEntities[intent] {
		if !entities.Has(key) {
			missing = append(missing, key)
		}
	}
	return len(missing) == 0, missing
}

func (e *Extractor) normalize(entities models.Entities) models.Entities {
	normalized := models.Entities{}

	if raw, ok := entities[models.EntityAmount]; ok {
		if amount, ok := ParseAmount(raw); ok {
			normalized[models.EntityAmount] = strconv.FormatFloat(amount, 'f', -1, 64)
		}
	}

	if raw, ok := entities[models.EntityCurrency]; ok {
		normalized[models.EntityCurrency] = normalizeCurrency(raw)
	} else if normalized.Has(models.EntityAmount) {
		normalized[models.EntityCurrency] = e.defaultCurrency
	}

	if raw, ok := entities[models.EntityRecipient]; ok {
		normalized[models.EntityRecipient] = titleCase(raw)
	}

	if raw, ok := entities[models.EntityIBAN]; ok {
		normalized[models.EntityIBAN] = strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	}

	if raw, ok := entities[models.EntityDate]; ok {
		normalized[models.EntityDate] = parseDate(raw)
	}

	if raw, ok := entities[models.EntityPIN]; ok {
		normalized[models.EntityPIN] = raw
	}

	if raw, ok := entities[models.EntityBiller]; ok {
		normalized[models.EntityBiller] = normalizeBiller(raw)
	}

	return normalized
}

// ParseAmount normalizes an amount string to a float. It accepts space, NBSP,
// comma and period as thousands separators, and comma or period as the
// decimal separator ("10 000,50" == "10000.50" == "10,000.50").
func ParseAmount(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, " ", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")

	// Treat a trailing comma/period group of 1-2 digits as decimals; any
	// other separator is a thousands separator.
	lastComma := strings.LastIndexAny(s, ",.")
	if lastComma >= 0 && len(s)-lastComma-1 <= 2 && len(s)-lastComma-1 > 0 {
		intPart := s[:lastComma]
		decPart := s[lastComma+1:]
		intPart = strings.NewReplacer(",", "", ".", "").Replace(intPart)
		s = intPart + "." + decPart
	} else {
		s = strings.NewReplacer(",", "", ".", "").Replace(s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ExtractPhone keeps the digits of a phone-like input; at least 8 digits are
// required for a valid receiver number.
func ExtractPhone(text string) (string, bool) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() < 8 {
		return "", false
	}
	return digits.String(), true
}

// ExtractPIN accepts a bare 4-6 digit PIN.
func ExtractPIN(text string) (string, bool) {
	pin := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	if len(pin) < 4 || len(pin) > 6 {
		return "", false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return pin, true
}

var nameFillerRe = regexp.MustCompile(`(?i)\b(um|uh|like|so|well|okay|ok|my|name|is|i'm|i\s+am|call\s+me|it's|this\s+is|the\s+name\s+is|je\s+m'appelle|je\s+suis|moi\s+c'est)\b`)
var nameCharsRe = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s\-'.]+$`)
var spacesRe = regexp.MustCompile(`\s+`)

// ExtractName strips filler words and returns a title-cased full name of one
// to five words, or ok=false when the input does not look like a name.
func ExtractName(text string) (string, bool) {
	cleaned := nameFillerRe.ReplaceAllString(strings.TrimSpace(text), "")
	cleaned = strings.TrimSpace(spacesRe.ReplaceAllString(cleaned, " "))
	if cleaned == "" || !nameCharsRe.MatchString(cleaned) {
		return "", false
	}
	words := strings.Fields(cleaned)
	if len(words) < 1 || len(words) > 5 {
		return "", false
	}
	return titleCase(cleaned), true
}

func normalizeCurrency(raw string) string {
	c := strings.ToLower(raw)
	switch {
	case strings.Contains(c, "eur") || strings.Contains(c, "€"):
		return "EUR"
	case strings.Contains(c, "fcfa") || strings.Contains(c, "franc") ||
		strings.Contains(c, "xaf") || strings.Contains(c, "xof") || c == "f":
		return "XAF"
	case strings.Contains(c, "usd") || strings.Contains(c, "dollar") || strings.Contains(c, "$"):
		return "USD"
	}
	return strings.ToUpper(c)
}

func normalizeBiller(raw string) string {
	b := strings.TrimSpace(strings.ToLower(raw))
	b = strings.ReplaceAll(b, "+", " plus")
	b = strings.ReplaceAll(b, " ", "")
	return strings.ToUpper(b)
}

func detectBillerProvider(text string) string {
	lowered := strings.ToLower(text)
	for _, provider := range billerProviders {
		if strings.Contains(lowered, provider) {
			return normalizeBiller(provider)
		}
	}
	return ""
}

func parseDate(raw string) string {
	now := time.Now()
	switch strings.ToLower(raw) {
	case "today", "aujourd'hui":
		return now.Format("2006-01-02")
	case "tomorrow", "demain":
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	case "yesterday", "hier":
		return now.AddDate(0, 0, -1).Format("2006-01-02")
	}

	for _, layout := range []string{"02/01/2006", "02-01-2006", "02/01/06", "2/1/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
