package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctl "github.com/idryos/idryos-auth/internal/http/controllers/auth"
	"github.com/idryos/idryos-auth/internal/http/helpers"
	mw "github.com/idryos/idryos-auth/internal/http/middlewares"
	"github.com/idryos/idryos-auth/internal/rate"
)

// registerAuthRoutes monta /auth/*. Solo login lleva rate limit por IP.
func registerAuthRoutes(r chi.Router, c *authctl.AuthController, limiter rate.Limiter, proxies helpers.TrustedProxies) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", c.Register)
		r.Method(http.MethodPost, "/login", mw.Chain(http.HandlerFunc(c.Login),
			mw.WithRateLimit(limiter, mw.ProxyRateKey(proxies)),
		))
		r.Post("/refresh", c.Refresh)
	})
}
