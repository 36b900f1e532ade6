package did

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenerator() *Generator {
	g := NewGenerator("localhost:8000")
	g.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return g
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("key")
	require.NoError(t, err)
	assert.Equal(t, MethodKey, m)

	m, err = ParseMethod("web")
	require.NoError(t, err)
	assert.Equal(t, MethodWeb, m)

	for _, bad := range []string{"", "ethr", "KEY", "did:key"} {
		_, err := ParseMethod(bad)
		assert.ErrorIs(t, err, ErrUnsupportedMethod, bad)
	}
}

func TestCreateKey_ResolveRoundTrip(t *testing.T) {
	g := testGenerator()
	for i := 0; i < 20; i++ {
		doc, err := g.Create(MethodKey, "user-1")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(doc.ID, "did:key:z"))

		embedded, err := DecodeKey(doc.ID)
		require.NoError(t, err)

		resolved, err := g.Resolve(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, resolved.ID)
		require.Len(t, resolved.VerificationMethod, 1)

		vm := resolved.VerificationMethod[0]
		raw, err := b64.DecodeString(vm.PublicKeyBase58)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(embedded, raw), "la clave del documento debe coincidir con la del identificador")
		assert.Equal(t, doc.ID+"#key-1", vm.ID)
		assert.Equal(t, doc.ID, vm.Controller)
		assert.Equal(t, []string{vm.ID}, resolved.Authentication)
	}
}

func TestCreateKey_FreshKeys(t *testing.T) {
	g := testGenerator()
	a, err := g.Create(MethodKey, "user-1")
	require.NoError(t, err)
	b, err := g.Create(MethodKey, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateWeb(t *testing.T) {
	g := testGenerator()
	doc, err := g.Create(MethodWeb, "u-42")
	require.NoError(t, err)

	assert.Equal(t, "did:web:localhost%3A8000:users:u-42", doc.ID)
	vm, ok := doc.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, VerificationKeyType, vm.Type)
	require.NotNil(t, vm.PublicKeyJwk)
	assert.Equal(t, "OKP", vm.PublicKeyJwk.Kty)
	assert.Equal(t, "Ed25519", vm.PublicKeyJwk.Crv)
	assert.Equal(t, vm.PublicKeyBase58, vm.PublicKeyJwk.X)
	assert.Equal(t, "2024-05-01T12:00:00Z", doc.Created)
	assert.Equal(t, doc.Created, doc.Updated)
}

func TestCreate_Unsupported(t *testing.T) {
	_, err := testGenerator().Create(Method("ethr"), "u")
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestResolve_NotFound(t *testing.T) {
	g := testGenerator()
	for _, id := range []string{
		"did:web:localhost%3A8000:users:u-42",
		"did:ethr:0xabc",
		"did:key:zAAAA",
		"did:key:z!!!notbase64",
		"did:key:",
		"garbage",
	} {
		_, err := g.Resolve(id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}

func TestDocumentJSONShape(t *testing.T) {
	doc, err := testGenerator().Create(MethodKey, "u")
	require.NoError(t, err)

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	for _, k := range []string{"@context", "id", "verificationMethod", "authentication", "created", "updated"} {
		assert.Contains(t, m, k)
	}
	vm := m["verificationMethod"].([]any)[0].(map[string]any)
	assert.Contains(t, vm, "publicKeyBase58")
	assert.NotContains(t, vm, "publicKeyJwk")
}
