package oauth

import (
	"context"
	"fmt"
	"strings"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/oauth"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
	"github.com/idryos/idryos-auth/internal/observability/logger"
	tokens "github.com/idryos/idryos-auth/internal/security/token"
)

func (s *oauthService) Token(ctx context.Context, in dto.TokenRequest) (*dto.TokenResponse, error) {
	client, err := s.authenticateClient(ctx, in.ClientID, in.ClientSecret)
	if err != nil {
		return nil, err
	}

	grant, err := ParseGrantType(strings.TrimSpace(in.GrantType))
	if err != nil {
		return nil, err
	}

	var resp *dto.TokenResponse
	switch grant {
	case GrantAuthorizationCode:
		resp, err = s.exchangeCode(ctx, client, in)
	case GrantRefreshToken:
		resp, err = s.exchangeRefresh(ctx, client, in)
	}
	s.observe(grant, err)
	return resp, err
}

// authenticateClient exige client_secret solo a clientes confidenciales.
func (s *oauthService) authenticateClient(ctx context.Context, clientID, secret string) (*repo.Client, error) {
	c, err := s.lookupClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c.IsConfidential() {
		if secret == "" || s.deps.Secrets == nil || !s.deps.Secrets.Verify(secret, c.SecretHash) {
			return nil, ErrInvalidClient
		}
	}
	return c, nil
}

func (s *oauthService) exchangeCode(ctx context.Context, client *repo.Client, in dto.TokenRequest) (*dto.TokenResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oauth.token"),
		logger.Op("ExchangeAuthorizationCode"),
		logger.ClientID(client.ID),
	)

	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, ErrCodeRequired
	}
	codeHash := tokens.SHA256Base64URL(code)

	ac, err := s.deps.Tokens.GetCode(ctx, codeHash, client.ID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("get code: %w", err)
	}

	now := s.now()
	if ac.Expired(now) {
		if err := s.deps.Tokens.DeleteCode(ctx, codeHash); err != nil && !repo.IsNotFound(err) {
			log.Warn("delete expired code failed", logger.Err(err))
		}
		return nil, ErrCodeExpired
	}
	if in.RedirectURI != "" && in.RedirectURI != ac.RedirectURI {
		return nil, ErrInvalidCode
	}
	if _, err := s.activeUser(ctx, ac.UserID, ErrInvalidCode); err != nil {
		return nil, err
	}

	access, _, err := s.deps.Issuer.IssueAccess(ac.UserID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := tokens.GenerateOpaqueToken(tokens.OpaqueBytes)
	if err != nil {
		return nil, err
	}

	// borra el código e inserta el refresh en la misma transacción: de dos
	// canjes concurrentes solo uno encuentra la fila.
	err = s.deps.Tokens.ExchangeCode(ctx, codeHash, client.ID, repo.RefreshToken{
		TokenHash: tokens.SHA256Base64URL(refresh),
		ClientID:  client.ID,
		UserID:    ac.UserID,
		Scopes:    ac.Scopes,
		ExpiresAt: now.Add(jwtx.RefreshTTL),
		CreatedAt: now,
	})
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	log.Info("code exchanged", logger.UserID(ac.UserID))
	return &dto.TokenResponse{
		AccessToken:  access,
		TokenType:    TokenType,
		ExpiresIn:    s.expiresIn(),
		RefreshToken: refresh,
		Scope:        strings.Join(ac.Scopes, " "),
	}, nil
}

// exchangeRefresh no rota el refresh token: sigue válido hasta su expiración.
func (s *oauthService) exchangeRefresh(ctx context.Context, client *repo.Client, in dto.TokenRequest) (*dto.TokenResponse, error) {
	raw := strings.TrimSpace(in.RefreshToken)
	if raw == "" {
		return nil, ErrRefreshRequired
	}

	rt, err := s.deps.Tokens.GetRefreshToken(ctx, tokens.SHA256Base64URL(raw), client.ID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if rt.Expired(s.now()) {
		return nil, ErrRefreshExpired
	}
	if _, err := s.activeUser(ctx, rt.UserID, ErrInvalidRefresh); err != nil {
		return nil, err
	}

	access, _, err := s.deps.Issuer.IssueAccess(rt.UserID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &dto.TokenResponse{
		AccessToken: access,
		TokenType:   TokenType,
		ExpiresIn:   s.expiresIn(),
		Scope:       strings.Join(rt.Scopes, " "),
	}, nil
}
