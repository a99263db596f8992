package llm

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/rafaelqm/imovia/internal/common"
)

// ParseDataURI splits a `data:<mime>;base64,<payload>` string into its mime
// type and decoded bytes. Anything else is rejected at the boundary with
// common.ErrInvalidInput.
func ParseDataURI(uri string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data URI", common.ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: data URI missing payload", common.ErrInvalidInput)
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok || mimeType == "" {
		return "", nil, fmt.Errorf("%w: data URI must be base64 with a mime type", common.ErrInvalidInput)
	}
	data, decErr := base64.StdEncoding.DecodeString(payload)
	if decErr != nil {
		return "", nil, fmt.Errorf("%w: bad base64 payload: %v", common.ErrInvalidInput, decErr)
	}
	return mimeType, data, nil
}

// FormatDataURI encodes bytes as a base64 data URI.
func FormatDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
