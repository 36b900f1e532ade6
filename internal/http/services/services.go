// Package services arma todos los services de dominio a partir de sus deps.
package services

import (
	"time"

	"github.com/idryos/idryos-auth/internal/cache"
	diddoc "github.com/idryos/idryos-auth/internal/did"
	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/idryos/idryos-auth/internal/http/services/auth"
	"github.com/idryos/idryos-auth/internal/http/services/did"
	"github.com/idryos/idryos-auth/internal/http/services/health"
	"github.com/idryos/idryos-auth/internal/http/services/oauth"
	"github.com/idryos/idryos-auth/internal/http/services/oidc"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
	"github.com/idryos/idryos-auth/internal/security/password"
)

// Deps contiene todo lo que necesitan los services.
type Deps struct {
	Store     repo.Store
	Cache     cache.Client
	Hasher    *password.Hasher
	Issuer    *jwtx.Issuer
	BaseURL   string
	WebDomain string
	CodeTTL   time.Duration
	ClientTTL time.Duration
	Version   string
	Now       func() time.Time
	// Checkers extra para /health además del store (ej. redis).
	Checkers map[string]health.Checker
	Observer oauth.GrantObserver
}

// Services agrupa los services de cada dominio.
type Services struct {
	Auth   auth.AuthService
	OAuth  oauth.OAuthService
	OIDC   oidc.Services
	DID    did.DIDService
	Health health.HealthService
}

// New crea el agregador. Los clientes OAuth se leen a través de la cache.
func New(d Deps) Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	users := d.Store.Users()

	clients := oauth.ClientLookup(d.Store.Clients())
	if d.Cache != nil {
		clients = oauth.NewCachedClients(d.Store.Clients(), d.Cache, d.ClientTTL)
	}

	grants := make([]string, 0, len(oauth.SupportedGrants))
	for _, g := range oauth.SupportedGrants {
		grants = append(grants, string(g))
	}

	checkers := map[string]health.Checker{"store": d.Store}
	for name, c := range d.Checkers {
		checkers[name] = c
	}

	gen := diddoc.NewGenerator(d.WebDomain)
	gen.Now = d.Now

	return Services{
		Auth: auth.NewAuthService(auth.Deps{
			Users:  users,
			Hasher: d.Hasher,
			Issuer: d.Issuer,
			Now:    d.Now,
		}),
		OAuth: oauth.NewOAuthService(oauth.Deps{
			Clients:  clients,
			Users:    users,
			Tokens:   d.Store.Tokens(),
			Issuer:   d.Issuer,
			Secrets:  d.Hasher,
			CodeTTL:  d.CodeTTL,
			Now:      d.Now,
			Observer: d.Observer,
		}),
		OIDC: oidc.NewServices(oidc.Deps{
			BaseIssuer: d.BaseURL,
			Grants:     grants,
			Issuer:     d.Issuer,
			Users:      users,
		}),
		DID: did.NewDIDService(did.Deps{
			Users:     users,
			Generator: gen,
			Now:       d.Now,
		}),
		Health: health.NewHealthService(health.Deps{
			Version:  d.Version,
			Checkers: checkers,
		}),
	}
}
