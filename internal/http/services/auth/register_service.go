package auth

import (
	"context"
	"fmt"
	"strings"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/auth"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

func (s *authService) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if !s.deps.Policy.Validate(in.Password) {
		return nil, ErrPasswordTooShort
	}

	exists, err := s.deps.Users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := s.deps.Hasher.Hash(in.Password)
	if err != nil {
		log.Error("hash failed", logger.Err(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := repo.User{
		ID:           s.deps.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.deps.Users.Create(ctx, u); err != nil {
		// carrera entre el Exists y el INSERT
		if repo.IsConflict(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Info("user registered", logger.UserID(u.ID))
	resp := dto.FromUser(u)
	return &resp, nil
}
