// Package app conecta config, storage y services en un http.Handler.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/idryos/idryos-auth/internal/cache"
	"github.com/idryos/idryos-auth/internal/config"
	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	httpx "github.com/idryos/idryos-auth/internal/http"
	authctl "github.com/idryos/idryos-auth/internal/http/controllers/auth"
	didctl "github.com/idryos/idryos-auth/internal/http/controllers/did"
	healthctl "github.com/idryos/idryos-auth/internal/http/controllers/health"
	oauthctl "github.com/idryos/idryos-auth/internal/http/controllers/oauth"
	oidcctl "github.com/idryos/idryos-auth/internal/http/controllers/oidc"
	"github.com/idryos/idryos-auth/internal/http/helpers"
	"github.com/idryos/idryos-auth/internal/http/router"
	"github.com/idryos/idryos-auth/internal/http/services"
	"github.com/idryos/idryos-auth/internal/http/services/health"
	"github.com/idryos/idryos-auth/internal/http/services/oauth"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
	"github.com/idryos/idryos-auth/internal/rate"
	"github.com/idryos/idryos-auth/internal/security/password"
)

// Deps son los recursos ya abiertos (ver Open).
type Deps struct {
	Store    repo.Store
	Cache    cache.Client
	Limiter  rate.Limiter
	Checkers map[string]health.Checker
	Hasher   *password.Hasher
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
	Pool     func() *pgxpool.Pool
	Now      func() time.Time
}

// App es la aplicación cableada.
type App struct {
	Handler  http.Handler
	Services services.Services
	Issuer   *jwtx.Issuer
}

// New crea services, controllers y router.
func New(cfg *config.Config, d Deps) (*App, error) {
	if d.Store == nil {
		return nil, fmt.Errorf("app: store is required")
	}
	if d.Hasher == nil {
		d.Hasher = password.NewHasher(password.Default)
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	// 1. Métricas antes del router: WithMetrics se resuelve al montar.
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{
		Registry: d.Registry,
		Gatherer: d.Gatherer,
		Pool:     d.Pool,
	})
	if err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}

	issuer := jwtx.NewIssuer(cfg.JWT.Secret, cfg.AccessTTL())
	issuer.Now = d.Now

	// 2. Services
	svcs := services.New(services.Deps{
		Store:     d.Store,
		Cache:     d.Cache,
		Hasher:    d.Hasher,
		Issuer:    issuer,
		BaseURL:   cfg.OAuth.Issuer,
		WebDomain: cfg.DID.WebDomain,
		CodeTTL:   cfg.CodeTTL(),
		ClientTTL: cfg.Cache.ClientTTL,
		Version:   cfg.App.Version,
		Now:       d.Now,
		Checkers:  d.Checkers,
		Observer: func(g oauth.GrantType, outcome string) {
			httpx.RecordGrant(string(g), outcome)
		},
	})

	// 3. Controllers + rutas
	handler := router.New(router.Deps{
		Controllers: router.Controllers{
			Auth:   authctl.NewAuthController(svcs.Auth),
			OAuth:  oauthctl.NewOAuthController(svcs.OAuth),
			OIDC:   oidcctl.NewOIDCController(svcs.OIDC),
			DID:    didctl.NewDIDController(svcs.DID),
			Health: healthctl.NewHealthController(svcs.Health),
		},
		LoginLimiter:   d.Limiter,
		Metrics:        metricsHandler,
		CORSOrigins:    cfg.AllowedOrigins(),
		TrustedProxies: helpers.TrustedProxies(proxies),
	})

	return &App{Handler: handler, Services: svcs, Issuer: issuer}, nil
}
