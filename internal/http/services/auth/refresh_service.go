package auth

import (
	"context"
	"fmt"
	"strings"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/auth"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

// Refresh canjea un refresh JWT (kind=refresh) por un access token nuevo.
// El refresh token no rota.
func (s *authService) Refresh(ctx context.Context, in dto.RefreshRequest) (*dto.RefreshResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.refresh"),
		logger.Op("Refresh"),
	)

	raw := strings.TrimSpace(in.RefreshToken)
	if raw == "" {
		return nil, ErrInvalidRefreshToken
	}
	sub, err := s.deps.Issuer.Verify(raw, jwtx.KindRefresh)
	if err != nil {
		log.Debug("refresh token rejected", logger.Err(err))
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.deps.Users.GetByID(ctx, sub)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	access, _, err := s.deps.Issuer.IssueAccess(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &dto.RefreshResponse{
		AccessToken: access,
		TokenType:   TokenType,
		ExpiresIn:   s.expiresIn(),
	}, nil
}
