package oauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/oauth"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
	"github.com/idryos/idryos-auth/internal/observability/logger"
	tokens "github.com/idryos/idryos-auth/internal/security/token"
)

func (s *oauthService) Authorize(ctx context.Context, accessToken string, in dto.AuthorizeRequest) (*dto.AuthorizeResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oauth.authorize"),
		logger.Op("Authorize"),
		logger.ClientID(in.ClientID),
	)

	client, err := s.lookupClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.AllowsRedirect(in.RedirectURI) {
		return nil, ErrInvalidRedirectURI
	}
	redirect, err := url.Parse(in.RedirectURI)
	if err != nil {
		return nil, ErrInvalidRedirectURI
	}
	if strings.TrimSpace(in.ResponseType) != ResponseTypeCode {
		return nil, ErrUnsupportedResponse
	}

	scopes := parseScopes(in.Scope)
	if len(scopes) == 0 {
		scopes = append([]string(nil), client.Scopes...)
	} else if !client.GrantsScopes(scopes) {
		return nil, ErrInvalidScope
	}

	sub, err := s.deps.Issuer.Verify(accessToken, jwtx.KindAccess)
	if err != nil {
		log.Debug("bearer rejected", logger.Err(err))
		return nil, ErrInvalidToken
	}
	user, err := s.activeUser(ctx, sub, ErrInvalidToken)
	if err != nil {
		return nil, err
	}

	code, err := tokens.GenerateOpaqueToken(tokens.OpaqueBytes)
	if err != nil {
		return nil, err
	}
	now := s.now()
	err = s.deps.Tokens.CreateCode(ctx, repo.AuthorizationCode{
		CodeHash:    tokens.SHA256Base64URL(code),
		ClientID:    client.ID,
		UserID:      user.ID,
		RedirectURI: in.RedirectURI,
		Scopes:      scopes,
		ExpiresAt:   now.Add(s.deps.CodeTTL),
		CreatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("persist code: %w", err)
	}

	q := redirect.Query()
	q.Set("code", code)
	if in.State != "" {
		q.Set("state", in.State)
	}
	redirect.RawQuery = q.Encode()

	log.Info("authorization code issued", logger.UserID(user.ID))
	return &dto.AuthorizeResponse{AuthorizeURL: redirect.String()}, nil
}
