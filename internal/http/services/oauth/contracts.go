// Package oauth contiene el motor de grants OAuth2: authorize y token.
package oauth

import (
	"context"
	"errors"
	"time"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/oauth"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
)

// OAuthService define /oauth/authorize y /oauth/token.
type OAuthService interface {
	// Authorize emite un código para el usuario dueño de accessToken.
	Authorize(ctx context.Context, accessToken string, in dto.AuthorizeRequest) (*dto.AuthorizeResponse, error)
	Token(ctx context.Context, in dto.TokenRequest) (*dto.TokenResponse, error)
}

// ClientLookup resuelve clientes OAuth. Ver NewCachedClients.
type ClientLookup interface {
	Get(ctx context.Context, clientID string) (*repo.Client, error)
}

// SecretVerifier verifica client_secret contra el hash guardado.
type SecretVerifier interface {
	Verify(plain, encoded string) bool
}

// GrantObserver recibe el resultado de cada grant (métricas).
type GrantObserver func(grant GrantType, outcome string)

// Deps contiene las dependencias del service.
type Deps struct {
	Clients  ClientLookup
	Users    repo.UserRepository
	Tokens   repo.TokenRepository
	Issuer   *jwtx.Issuer
	Secrets  SecretVerifier
	CodeTTL  time.Duration // default 5m
	Now      func() time.Time
	Observer GrantObserver
}

// GrantType es el conjunto cerrado de grants soportados.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

// SupportedGrants se publica en discovery.
var SupportedGrants = []GrantType{GrantAuthorizationCode, GrantRefreshToken}

// ParseGrantType devuelve ErrUnsupportedGrantType para cualquier otro valor.
func ParseGrantType(s string) (GrantType, error) {
	switch g := GrantType(s); g {
	case GrantAuthorizationCode, GrantRefreshToken:
		return g, nil
	}
	return "", ErrUnsupportedGrantType
}

const (
	ResponseTypeCode = "code"
	TokenType        = "Bearer"
	DefaultCodeTTL   = 5 * time.Minute
)

// Errores de cliente
var (
	ErrInvalidClient       = errors.New("invalid client")
	ErrClientDisabled      = errors.New("client is disabled")
	ErrInvalidRedirectURI  = errors.New("invalid redirect uri")
	ErrUnsupportedResponse = errors.New("unsupported response type")
	ErrInvalidScope        = errors.New("invalid scope")
	ErrInvalidToken        = errors.New("invalid or expired token")
)

// Errores de grant
var (
	ErrCodeRequired         = errors.New("authorization code required")
	ErrInvalidCode          = errors.New("invalid authorization code")
	ErrCodeExpired          = errors.New("authorization code expired")
	ErrRefreshRequired      = errors.New("refresh token required")
	ErrInvalidRefresh       = errors.New("invalid refresh token")
	ErrRefreshExpired       = errors.New("refresh token expired")
	ErrUnsupportedGrantType = errors.New("unsupported grant type")
)
