package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildListingJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. The field set is fixed: extraction must emit exactly these
// keys or be sanitized down to them.
func BuildListingJSONSchema(allowedTypes []string) map[string]any {
	props := map[string]any{
		"title":       map[string]any{"type": "string"},
		"type":        map[string]any{"type": "string"},
		"price":       map[string]any{"type": "number", "minimum": 0},
		"address":     map[string]any{"type": "string"},
		"area":        map[string]any{"type": "number", "minimum": 0},
		"bedrooms":    map[string]any{"type": "integer", "minimum": 0},
		"bathrooms":   map[string]any{"type": "integer", "minimum": 0},
		"description": map[string]any{"type": "string"},
		"status":      map[string]any{"type": "string"},
	}

	// Constrain type if a taxonomy is provided.
	if len(allowedTypes) > 0 {
		props["type"] = map[string]any{
			"type": "string",
			"enum": allowedTypes,
		}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateJSONAgainstSchema validates doc (raw JSON bytes) against the
// generic-map schema.
func ValidateJSONAgainstSchema(schema map[string]any, doc []byte) error {
	sb, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiled, err := jsonschema.CompileString("listing.schema.json", string(sb))
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return compiled.Validate(value)
}
