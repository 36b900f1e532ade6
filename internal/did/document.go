package did

// Contexts JSON-LD de todo documento emitido.
var defaultContext = []string{
	"https://www.w3.org/ns/did/v1",
	"https://w3id.org/security/suites/ed25519-2020/v1",
}

// VerificationKeyType es la suite de todas las verification methods.
const VerificationKeyType = "Ed25519VerificationKey2020"

type Document struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
	Created            string               `json:"created"`
	Updated            string               `json:"updated"`
}

// VerificationMethod lleva la clave en PublicKeyBase58 codificada como
// base64url sin padding, la misma forma que usa el identificador did:key.
type VerificationMethod struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Controller      string `json:"controller"`
	PublicKeyBase58 string `json:"publicKeyBase58,omitempty"`
	PublicKeyJwk    *JWK   `json:"publicKeyJwk,omitempty"`
}

// JWK de una clave OKP Ed25519 (RFC 8037).
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
}

// PrimaryKey devuelve la primera verification method, si existe.
func (d Document) PrimaryKey() (VerificationMethod, bool) {
	if len(d.VerificationMethod) == 0 {
		return VerificationMethod{}, false
	}
	return d.VerificationMethod[0], true
}
