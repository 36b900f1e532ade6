// Package did genera documentos DID para did:key y did:web y resuelve did:key
// a partir del propio identificador.
package did

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Method es el conjunto cerrado de métodos soportados.
type Method string

const (
	MethodKey Method = "key"
	MethodWeb Method = "web"
)

const (
	prefixKey = "did:key:"
	prefixWeb = "did:web:"
	// multibase 'z' precede la clave en did:key
	keyMultibase = "z"
	keyFragment  = "#key-1"
)

var (
	ErrUnsupportedMethod = errors.New("unsupported DID method")
	ErrNotFound          = errors.New("DID not found or unsupported method")
)

var b64 = base64.RawURLEncoding

// ParseMethod valida el nombre de método recibido del cliente.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.TrimSpace(s)); m {
	case MethodKey, MethodWeb:
		return m, nil
	default:
		return "", ErrUnsupportedMethod
	}
}

// Generator construye documentos. La clave privada no se conserva.
type Generator struct {
	WebDomain string
	Rand      io.Reader
	Now       func() time.Time
}

func NewGenerator(webDomain string) *Generator {
	return &Generator{WebDomain: webDomain, Rand: rand.Reader, Now: time.Now}
}

// GenerateKeyPair usa el CSPRNG del proceso salvo que se inyecte otro reader.
func (g *Generator) GenerateKeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	pub, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, nil, fmt.Errorf("did: keygen: %w", err)
	}
	return pub, priv, nil
}

// Create genera un par de claves nuevo y el documento para el método dado.
func (g *Generator) Create(m Method, userID string) (Document, error) {
	switch m {
	case MethodKey:
		pub, _, err := g.GenerateKeyPair()
		if err != nil {
			return Document{}, err
		}
		return g.keyDocument(pub), nil
	case MethodWeb:
		pub, _, err := g.GenerateKeyPair()
		if err != nil {
			return Document{}, err
		}
		return g.webDocument(pub, userID), nil
	default:
		return Document{}, ErrUnsupportedMethod
	}
}

// Resolve reconstruye did:key sin storage. did:web requiere fetch HTTP y no
// está implementado: devuelve ErrNotFound igual que un prefijo desconocido.
func (g *Generator) Resolve(id string) (Document, error) {
	switch {
	case strings.HasPrefix(id, prefixKey):
		pub, err := DecodeKey(id)
		if err != nil {
			return Document{}, ErrNotFound
		}
		return g.keyDocument(pub), nil
	case strings.HasPrefix(id, prefixWeb):
		// TODO: resolver did:web vía https://<domain>/<path>/did.json
		return Document{}, ErrNotFound
	default:
		return Document{}, ErrNotFound
	}
}

// KeyID arma el identificador did:key de una clave pública.
func KeyID(pub ed25519.PublicKey) string {
	return prefixKey + keyMultibase + b64.EncodeToString(pub)
}

// WebID arma did:web:<domain>:users:<userID>. El puerto se codifica como %3A.
func WebID(domain, userID string) string {
	return prefixWeb + strings.ReplaceAll(domain, ":", "%3A") + ":users:" + userID
}

// DecodeKey extrae la clave pública de un identificador did:key.
func DecodeKey(id string) (ed25519.PublicKey, error) {
	rest, ok := strings.CutPrefix(id, prefixKey+keyMultibase)
	if !ok || rest == "" {
		return nil, fmt.Errorf("did: not a did:key identifier")
	}
	raw, err := b64.DecodeString(rest)
	if err != nil {
		return nil, fmt.Errorf("did: decode key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("did: key length %d", len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

func (g *Generator) keyDocument(pub ed25519.PublicKey) Document {
	id := KeyID(pub)
	return g.document(id, VerificationMethod{
		ID:              id + keyFragment,
		Type:            VerificationKeyType,
		Controller:      id,
		PublicKeyBase58: b64.EncodeToString(pub),
	})
}

func (g *Generator) webDocument(pub ed25519.PublicKey, userID string) Document {
	id := WebID(g.WebDomain, userID)
	enc := b64.EncodeToString(pub)
	return g.document(id, VerificationMethod{
		ID:              id + keyFragment,
		Type:            VerificationKeyType,
		Controller:      id,
		PublicKeyBase58: enc,
		PublicKeyJwk:    &JWK{Kty: "OKP", Crv: "Ed25519", X: enc},
	})
}

func (g *Generator) document(id string, vm VerificationMethod) Document {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	ts := now().UTC().Format(time.RFC3339)
	return Document{
		Context:            append([]string(nil), defaultContext...),
		ID:                 id,
		VerificationMethod: []VerificationMethod{vm},
		Authentication:     []string{vm.ID},
		Created:            ts,
		Updated:            ts,
	}
}
