// Package auth contiene los controllers de /auth/*.
package auth

import (
	"errors"
	"net/http"

	dto "github.com/idryos/idryos-auth/internal/http/dto/auth"
	httperrors "github.com/idryos/idryos-auth/internal/http/errors"
	"github.com/idryos/idryos-auth/internal/http/helpers"
	svc "github.com/idryos/idryos-auth/internal/http/services/auth"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

// AuthController maneja register, login y refresh.
type AuthController struct {
	service svc.AuthService
}

func NewAuthController(service svc.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register maneja POST /auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	user, err := c.service.Register(r.Context(), req)
	if err != nil {
		logger.From(r.Context()).Debug("register failed", logger.Layer("controller"), logger.Err(err))
		httperrors.WriteError(w, r, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, user)
}

// Login maneja POST /auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	resp, err := c.service.Login(r.Context(), req)
	if err != nil {
		httperrors.WriteError(w, r, mapError(err))
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Refresh maneja POST /auth/refresh
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	resp, err := c.service.Refresh(r.Context(), req)
	if err != nil {
		httperrors.WriteError(w, r, mapError(err))
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// ─── Helpers ───

func mapError(err error) error {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		return httperrors.Validation("All fields are required")
	case errors.Is(err, svc.ErrPasswordTooShort):
		return httperrors.Validation("Password must be at least 8 characters long")
	case errors.Is(err, svc.ErrUserExists):
		return httperrors.Validation("User already exists")
	case errors.Is(err, svc.ErrInvalidCredentials):
		return httperrors.Authentication("Invalid credentials")
	case errors.Is(err, svc.ErrInvalidRefreshToken):
		return httperrors.Authentication("Invalid refresh token")
	default:
		return httperrors.Unexpected(err)
	}
}
