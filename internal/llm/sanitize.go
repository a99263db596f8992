package llm

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rafaelqm/imovia/constants"
)

var reNumber = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// SanitizeListingPayload coerces a raw extracted payload into ListingFields,
// never failing: string fields default to "", numeric fields to 0. Models
// occasionally emit prices as formatted strings ("R$ 950.000,00") or counts
// as floats; we only touch values we can coerce safely and report what was
// dropped.
func SanitizeListingPayload(payload map[string]any) (ListingFields, []string) {
	var dropped []string

	str := func(key string) string {
		v, ok := payload[key]
		if !ok || v == nil {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			dropped = append(dropped, key)
			return ""
		}
		return strings.TrimSpace(s)
	}

	num := func(key string) float64 {
		v, ok := payload[key]
		if !ok || v == nil {
			return 0
		}
		f, ok := asFloat(v)
		if !ok {
			dropped = append(dropped, key)
			return 0
		}
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			dropped = append(dropped, key)
			return 0
		}
		return f
	}

	// Free-form type labels ("cobertura", "apto") fold onto the taxonomy when
	// they match; unknown labels pass through untouched.
	typeLabel := str("type")
	if canonical, ok := constants.CanonicalizePropertyType(typeLabel); ok {
		typeLabel = string(canonical)
	}

	return ListingFields{
		Title:       str("title"),
		Type:        typeLabel,
		Price:       num("price"),
		Address:     str("address"),
		Area:        num("area"),
		Bedrooms:    int(num("bedrooms")),
		Bathrooms:   int(num("bathrooms")),
		Description: str("description"),
		Status:      str("status"),
	}, dropped
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		return parseLooseNumber(t)
	default:
		return 0, false
	}
}

// parseLooseNumber accepts "950000", "950000.50" and locale-formatted
// variants like "950.000,50" or "R$ 950.000".
func parseLooseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}

	m := reNumber.FindAllString(strings.ReplaceAll(s, ".", ""), -1)
	if len(m) == 0 {
		return 0, false
	}
	candidate := strings.Replace(m[0], ",", ".", 1)
	f, err := strconv.ParseFloat(candidate, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
