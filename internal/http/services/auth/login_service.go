package auth

import (
	"context"
	"fmt"
	"strings"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/auth"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

func (s *authService) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("LoginPassword"),
	)

	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		if !repo.IsNotFound(err) {
			return nil, fmt.Errorf("get user: %w", err)
		}
		s.deps.Hasher.Verify(in.Password, s.dummy())
		log.Debug("user not found")
		return nil, ErrInvalidCredentials
	}

	if !s.deps.Hasher.Verify(in.Password, user.PasswordHash) {
		log.Debug("password mismatch", logger.UserID(user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		log.Debug("user inactive", logger.UserID(user.ID))
		return nil, ErrInvalidCredentials
	}

	access, _, err := s.deps.Issuer.IssueAccess(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, _, err := s.deps.Issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	log.Info("login ok", logger.UserID(user.ID))
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenType,
		ExpiresIn:    s.expiresIn(),
		User:         dto.FromUser(*user),
	}, nil
}
