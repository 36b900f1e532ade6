package oidc

import (
	"context"
	"fmt"
	"strings"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/oidc"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

type userInfoService struct {
	issuer *jwtx.Issuer
	users  repo.UserRepository
}

// NewUserInfoService crea un nuevo servicio UserInfo.
func NewUserInfoService(issuer *jwtx.Issuer, users repo.UserRepository) UserInfoService {
	return &userInfoService{issuer: issuer, users: users}
}

func (s *userInfoService) GetUserInfo(ctx context.Context, bearerToken string) (*dto.UserInfoResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oidc.userinfo"),
		logger.Op("GetUserInfo"),
	)

	bearerToken = strings.TrimSpace(bearerToken)
	if bearerToken == "" {
		return nil, ErrMissingToken
	}
	sub, err := s.issuer.Verify(bearerToken, jwtx.KindAccess)
	if err != nil {
		log.Debug("invalid token", logger.Err(err))
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, sub)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	return &dto.UserInfoResponse{
		Sub:               user.ID,
		Name:              user.Username,
		Email:             user.Email,
		PreferredUsername: user.Username,
	}, nil
}
