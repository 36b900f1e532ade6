package oidc

import (
	"strings"

	dto "github.com/idryos/idryos-auth/internal/http/dto/oidc"
)

type discoveryService struct {
	meta dto.Metadata
}

// NewDiscoveryService precalcula el documento; issuer no lleva "/" final.
func NewDiscoveryService(issuer string, grants []string) DiscoveryService {
	iss := strings.TrimRight(issuer, "/")
	return &discoveryService{meta: dto.Metadata{
		Issuer:                            iss,
		AuthorizationEndpoint:             iss + "/oauth/authorize",
		TokenEndpoint:                     iss + "/oauth/token",
		UserinfoEndpoint:                  iss + "/oauth/userinfo",
		JWKSURI:                           iss + "/.well-known/jwks.json",
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               append([]string(nil), grants...),
		SubjectTypesSupported:             []string{"public"},
		IDTokenSigningAlgValuesSupported:  []string{"HS256"},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_post", "none"},
	}}
}

func (s *discoveryService) Metadata() dto.Metadata {
	m := s.meta
	m.GrantTypesSupported = append([]string(nil), s.meta.GrantTypesSupported...)
	return m
}

// JWKS es siempre vacío: el secreto HS256 no se publica.
func (s *discoveryService) JWKS() dto.JWKS {
	return dto.JWKS{Keys: []any{}}
}
