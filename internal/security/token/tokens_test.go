package tokens

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(OpaqueBytes)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(OpaqueBytes)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, OpaqueBytes)
}

func TestSHA256Base64URL(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ungWv48Bz-pBQUDeXa4iI7ADYaOWF3qctBD_YfIAFa0", SHA256Base64URL("abc"))
	assert.NotEqual(t, SHA256Base64URL("a"), SHA256Base64URL("b"))
}
