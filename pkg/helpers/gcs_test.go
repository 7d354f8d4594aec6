package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImageDataURI(t *testing.T) {
	data, ct, ext, err := DecodeImageDataURI("data:image/jpeg;base64,iVBORw0KGgo=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct, "sniffed, not declared")
	assert.Equal(t, ".png", ext)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data)
}

func TestDecodeImageDataURI_Rejects(t *testing.T) {
	for name, in := range map[string]string{
		"no scheme":   "image/png;base64,iVBORw0KGgo=",
		"no comma":    "data:image/png;base64",
		"not base64":  "data:text/plain,hello",
		"bad payload": "data:image/png;base64,@@@",
	} {
		_, _, _, err := DecodeImageDataURI(in)
		assert.ErrorIs(t, err, ErrBadDataURI, name)
	}

	_, _, _, err := DecodeImageDataURI("data:text/plain;base64,aGVsbG8gd29ybGQ=")
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/b/users/u1/x.png", PublicURL("b", "users/u1/x.png"))
}
