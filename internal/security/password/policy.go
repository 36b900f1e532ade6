package password

// MinLength es el largo mínimo aceptado en registro.
const MinLength = 8

type Policy struct {
	MinLength int
}

// DefaultPolicy solo exige largo; no hay reglas de composición.
var DefaultPolicy = Policy{MinLength: MinLength}

// Validate mide en bytes.
func (p Policy) Validate(s string) bool {
	return len(s) >= p.MinLength
}
