// Package oidc contiene discovery, jwks y userinfo.
package oidc

import (
	"context"
	"errors"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/oidc"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
)

// Deps contiene las dependencias para crear los services OIDC.
type Deps struct {
	BaseIssuer string
	Grants     []string
	Issuer     *jwtx.Issuer
	Users      repo.UserRepository
}

// DiscoveryService arma /.well-known/openid_configuration.
type DiscoveryService interface {
	Metadata() dto.Metadata
	JWKS() dto.JWKS
}

// UserInfoService define las operaciones para OIDC UserInfo.
type UserInfoService interface {
	GetUserInfo(ctx context.Context, bearerToken string) (*dto.UserInfoResponse, error)
}

// Services agrupa todos los services del dominio OIDC.
type Services struct {
	Discovery DiscoveryService
	UserInfo  UserInfoService
}

// NewServices crea el agregador de services OIDC.
func NewServices(d Deps) Services {
	return Services{
		Discovery: NewDiscoveryService(d.BaseIssuer, d.Grants),
		UserInfo:  NewUserInfoService(d.Issuer, d.Users),
	}
}

// Errores de UserInfo
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)
