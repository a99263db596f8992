package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		matched bool
		payload map[string]any
	}{
		{
			name:    "object with surrounding prose",
			raw:     `prefix {"a":1} suffix`,
			matched: true,
			payload: map[string]any{"a": float64(1)},
		},
		{
			name:    "no braces",
			raw:     "no braces here",
			matched: false,
		},
		{
			name:    "nested object parsed whole",
			raw:     `{"a": {"b": 1}}`,
			matched: true,
			payload: map[string]any{"a": map[string]any{"b": float64(1)}},
		},
		{
			name:    "outermost span invalid means no match",
			raw:     `{"a": {"b": 1}} trailing {noise}`,
			matched: false,
		},
		{
			name:    "reversed braces",
			raw:     `} backwards {`,
			matched: false,
		},
		{
			name:    "empty input",
			raw:     "",
			matched: false,
		},
		{
			name:    "markdown fenced payload",
			raw:     "Here is the data:\n```json\n{\"title\":\"Cobertura\",\"price\":950000}\n```\nThanks.",
			matched: true,
			payload: map[string]any{"title": "Cobertura", "price": float64(950000)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractJSON(tt.raw)
			assert.Equal(t, tt.raw, res.Raw)
			if !tt.matched {
				assert.False(t, res.Matched)
				assert.Nil(t, res.Payload)
				return
			}
			require.True(t, res.Matched)
			assert.Equal(t, tt.payload, res.Payload)
		})
	}
}
