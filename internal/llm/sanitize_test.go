package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeListingPayloadDefaults(t *testing.T) {
	fields, dropped := SanitizeListingPayload(map[string]any{})
	assert.Empty(t, dropped)
	assert.Equal(t, ListingFields{}, fields)
}

func TestSanitizeListingPayloadCoercions(t *testing.T) {
	fields, dropped := SanitizeListingPayload(map[string]any{
		"title":     "  Cobertura na Barra  ",
		"type":      "Penthouse",
		"price":     "R$ 950.000,00",
		"area":      float64(182.5),
		"bedrooms":  float64(3),
		"bathrooms": "2",
		"address":   nil,
		"status":    true, // wrong type, dropped
	})

	assert.Equal(t, "Cobertura na Barra", fields.Title)
	assert.Equal(t, "Penthouse", fields.Type)
	assert.InDelta(t, 950000.0, fields.Price, 0.001)
	assert.InDelta(t, 182.5, fields.Area, 0.001)
	assert.Equal(t, 3, fields.Bedrooms)
	assert.Equal(t, 2, fields.Bathrooms)
	assert.Equal(t, "", fields.Address)
	assert.Equal(t, "", fields.Status)
	assert.Contains(t, dropped, "status")
}

func TestSanitizeListingPayloadCanonicalizesType(t *testing.T) {
	fields, _ := SanitizeListingPayload(map[string]any{"type": "cobertura"})
	assert.Equal(t, "Penthouse", fields.Type)

	fields, _ = SanitizeListingPayload(map[string]any{"type": "Castelo"})
	assert.Equal(t, "Castelo", fields.Type)
}

func TestSanitizeListingPayloadRejectsNegatives(t *testing.T) {
	fields, dropped := SanitizeListingPayload(map[string]any{
		"price": float64(-10),
	})
	assert.Zero(t, fields.Price)
	assert.Contains(t, dropped, "price")
}

func TestParseLooseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"950000", 950000, true},
		{"950000.50", 950000.50, true},
		{"950.000,50", 950000.50, true},
		{"R$ 950.000", 950000, true},
		{"12.5", 12.5, true},
		{"", 0, false},
		{"sob consulta", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLooseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 0.001, tt.in)
		}
	}
}
