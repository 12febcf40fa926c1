package models

import "strconv"

// Entity keys produced by the extractor. Values are normalized strings;
// Amount() parses the canonical float form.
const (
	EntityAmount    = "amount"
	EntityCurrency  = "currency"
	EntityRecipient = "recipient"
	EntityIBAN      = "iban"
	EntityDate      = "date"
	EntityPIN       = "pin"
	EntityPhone     = "phone"
	EntityName      = "name"
	EntityBiller    = "biller"
)

// Entities maps entity type to its normalized value.
type Entities map[string]string

// Has reports whether the entity is present.
func (e Entities) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Amount returns the parsed amount entity, or (0, false) when absent or
// unparseable.
func (e Entities) Amount() (float64, bool) {
	raw, ok := e[EntityAmount]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
