// Package validate checks request payloads before any mutation happens.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"fieldsales-service/internal/apperr"

	"github.com/shopspring/decimal"
)

// Payload is a decoded JSON request body.
type Payload map[string]interface{}

// Required checks each field in order and fails on the first one that is
// absent, null or empty with "{field} is required".
func Required(p Payload, fields ...string) error {
	for _, field := range fields {
		if isEmpty(p[field]) {
			return apperr.New(apperr.MissingField, field+" is required")
		}
	}
	return nil
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case json.Number:
		return t.String() == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	default:
		return false
	}
}

// String returns the field as text. Numbers are rendered as given.
func (p Payload) String(field string) string {
	switch t := p[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

// OptionalString returns nil when the field is absent or empty.
func (p Payload) OptionalString(field string) *string {
	s := p.String(field)
	if s == "" {
		return nil
	}
	return &s
}

// Bool returns the field as a boolean and whether it was present.
func (p Payload) Bool(field string) (bool, bool) {
	switch t := p[field].(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	case json.Number:
		return t.String() != "0", true
	case float64:
		return t != 0, true
	}
	return false, false
}

// Items returns the field as a list of objects.
func (p Payload) Items(field string) ([]Payload, error) {
	raw, ok := p[field].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, apperr.New(apperr.MissingField, field+" list is required")
	}
	items := make([]Payload, 0, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, apperr.New(apperr.InvalidFormat, fmt.Sprintf("%s[%d] must be an object", field, i))
		}
		items = append(items, Payload(m))
	}
	return items, nil
}

// Decimal parses a number given either as a JSON number or a numeric string.
// Bare fractions like ".5" and trailing points like "5." are accepted.
func Decimal(field string, v interface{}) (decimal.Decimal, error) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case string:
		s = strings.TrimSpace(t)
	default:
		return decimal.Zero, apperr.New(apperr.InvalidFormat, fmt.Sprintf("Invalid %s", field))
	}

	s = strings.TrimPrefix(s, "+")
	if !strings.ContainsAny(s, "0123456789") {
		return decimal.Zero, apperr.New(apperr.InvalidFormat, fmt.Sprintf("Invalid %s", field))
	}
	switch {
	case strings.HasPrefix(s, "-."):
		s = "-0" + s[1:]
	case strings.HasPrefix(s, "."):
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperr.New(apperr.InvalidFormat, fmt.Sprintf("Invalid %s", field))
	}
	return d, nil
}

// PositiveWhole parses a strictly positive integral quantity.
func PositiveWhole(field string, v interface{}) (decimal.Decimal, error) {
	d, err := Decimal(field, v)
	if err != nil {
		return d, err
	}
	if !d.IsInteger() || !d.IsPositive() {
		return decimal.Zero, apperr.New(apperr.InvalidRange, fmt.Sprintf("%s must be a positive whole number", field))
	}
	return d, nil
}
