package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// OpaqueBytes es el tamaño de códigos de autorización, refresh tokens OAuth y
// secretos de cliente.
const OpaqueBytes = 32

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("tokens: entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SHA256Base64URL es la forma en que se persisten códigos y refresh tokens.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
