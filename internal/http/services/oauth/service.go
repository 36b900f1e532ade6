package oauth

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
)

type oauthService struct {
	deps Deps
}

// NewOAuthService crea el service; CodeTTL y Now tienen defaults.
func NewOAuthService(deps Deps) OAuthService {
	if deps.CodeTTL <= 0 {
		deps.CodeTTL = DefaultCodeTTL
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &oauthService{deps: deps}
}

func (s *oauthService) now() time.Time { return s.deps.Now().UTC() }

func (s *oauthService) expiresIn() int64 {
	return int64(s.deps.Issuer.AccessTTL / time.Second)
}

func (s *oauthService) observe(g GrantType, err error) {
	if s.deps.Observer == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.deps.Observer(g, outcome)
}

// lookupClient aplica las reglas comunes a authorize y token.
func (s *oauthService) lookupClient(ctx context.Context, clientID string) (*repo.Client, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrInvalidClient
	}
	c, err := s.deps.Clients.Get(ctx, clientID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidClient
		}
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrClientDisabled
	}
	return c, nil
}

// activeUser carga el usuario y lo exige activo; si no, devuelve reject.
func (s *oauthService) activeUser(ctx context.Context, userID string, reject error) (*repo.User, error) {
	u, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, reject
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive {
		return nil, reject
	}
	return u, nil
}

// parseScopes separa por espacios y deduplica manteniendo el orden.
func parseScopes(raw string) []string {
	var out []string
	for _, s := range strings.Fields(raw) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
