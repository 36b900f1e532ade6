package router

import (
	"github.com/go-chi/chi/v5"

	oidcctl "github.com/idryos/idryos-auth/internal/http/controllers/oidc"
)

// registerOIDCRoutes monta los documentos públicos de /.well-known.
func registerOIDCRoutes(r chi.Router, c *oidcctl.OIDCController) {
	r.Get("/.well-known/openid_configuration", c.Discovery)
	r.Get("/.well-known/jwks.json", c.JWKS)
}
