// Package router define la tabla de rutas HTTP del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/idryos/idryos-auth/internal/http"
	authctl "github.com/idryos/idryos-auth/internal/http/controllers/auth"
	didctl "github.com/idryos/idryos-auth/internal/http/controllers/did"
	healthctl "github.com/idryos/idryos-auth/internal/http/controllers/health"
	oauthctl "github.com/idryos/idryos-auth/internal/http/controllers/oauth"
	oidcctl "github.com/idryos/idryos-auth/internal/http/controllers/oidc"
	httperrors "github.com/idryos/idryos-auth/internal/http/errors"
	"github.com/idryos/idryos-auth/internal/http/helpers"
	mw "github.com/idryos/idryos-auth/internal/http/middlewares"
	"github.com/idryos/idryos-auth/internal/rate"
)

// Controllers agrupa los controllers montados.
type Controllers struct {
	Auth   *authctl.AuthController
	OAuth  *oauthctl.OAuthController
	OIDC   *oidcctl.OIDCController
	DID    *didctl.DIDController
	Health *healthctl.HealthController
}

// Deps contiene las dependencias del router.
type Deps struct {
	Controllers  Controllers
	LoginLimiter rate.Limiter // opcional
	Metrics      http.Handler // opcional; monta /metrics
	CORSOrigins  []string
	// TrustedProxies habilita X-Forwarded-For para rate limit y logs.
	TrustedProxies helpers.TrustedProxies
}

// New arma el router con el stack global
// recover -> request-id -> logging -> metrics -> CORS.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(d.TrustedProxies),
		httpx.WithMetrics,
		mw.WithCORS(d.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrMethodNotAllowed)
	})

	c := d.Controllers
	registerAuthRoutes(r, c.Auth, d.LoginLimiter, d.TrustedProxies)
	registerOAuthRoutes(r, c.OAuth, c.OIDC)
	registerOIDCRoutes(r, c.OIDC)
	registerDIDRoutes(r, c.DID)

	r.Get("/health", c.Health.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	return r
}
