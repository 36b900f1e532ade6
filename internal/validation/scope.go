// Package validation reúne las reglas de forma para datos de clientes OAuth
// registrados por la CLI.
package validation

import (
	"net/url"
	"regexp"
	"strings"
)

// Minúsculas, 1..64, empieza y termina alfanumérico; en el medio se admite
// ":_.-". Sin espacios: el scope viaja separado por espacios.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// ValidRedirectURI exige URI absoluta http(s) con host y sin fragmento.
// El match en /oauth/authorize es por igualdad exacta, así que no se normaliza.
func ValidRedirectURI(raw string) bool {
	if raw == "" || strings.TrimSpace(raw) != raw {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Fragment != "" || strings.Contains(raw, "#") {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
