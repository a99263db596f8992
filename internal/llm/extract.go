package llm

import (
	"encoding/json"
	"strings"
)

// ExtractionResult reports whether a structured payload was found inside raw
// model output. Payload is nil whenever Matched is false; the parser never
// guesses a partial structure.
type ExtractionResult struct {
	Raw     string
	Payload map[string]any
	Matched bool
}

// ExtractJSON scans raw text for an embedded JSON object, tolerating the
// prose models wrap around it. Only the outermost brace span (first '{' to
// last '}') is considered; if that span is not valid JSON the whole
// extraction is a miss, never an error.
func ExtractJSON(raw string) ExtractionResult {
	res := ExtractionResult{Raw: raw}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || start >= end {
		return res
	}

	candidate := raw[start : end+1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return res
	}

	res.Payload = payload
	res.Matched = true
	return res
}
