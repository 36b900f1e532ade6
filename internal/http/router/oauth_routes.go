package router

import (
	"github.com/go-chi/chi/v5"

	oauthctl "github.com/idryos/idryos-auth/internal/http/controllers/oauth"
	oidcctl "github.com/idryos/idryos-auth/internal/http/controllers/oidc"
	mw "github.com/idryos/idryos-auth/internal/http/middlewares"
)

// registerOAuthRoutes monta /oauth/*. Todas las respuestas son no-store.
func registerOAuthRoutes(r chi.Router, c *oauthctl.OAuthController, oidc *oidcctl.OIDCController) {
	r.Route("/oauth", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Get("/authorize", c.Authorize)
		r.Post("/token", c.Token)
		r.Get("/userinfo", oidc.UserInfo)
	})
}
