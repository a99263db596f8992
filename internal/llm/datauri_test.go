package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelqm/imovia/internal/common"
)

func TestParseDataURIRoundTrip(t *testing.T) {
	in := []byte{0x89, 'P', 'N', 'G'}
	uri := FormatDataURI("image/png", in)

	mt, data, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)
	assert.Equal(t, in, data)
}

func TestParseDataURIRejectsBadShapes(t *testing.T) {
	bad := []string{
		"",
		"http://example.com/a.png",
		"data:image/png,notbase64section",
		"data:;base64,QUJD",
		"data:image/png;base64",
		"data:image/png;base64,***",
	}
	for _, uri := range bad {
		_, _, err := ParseDataURI(uri)
		assert.ErrorIs(t, err, common.ErrInvalidInput, uri)
	}
}
