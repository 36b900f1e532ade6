// Package auth contiene los services de credenciales propias (/auth/*).
package auth

import (
	"context"
	"fmt"
	"time"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/auth"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
	"github.com/idryos/idryos-auth/internal/security/password"
)

// PasswordHasher es el subconjunto de *password.Hasher que usa el service.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

// AuthService define register, login y refresh.
type AuthService interface {
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, in dto.RefreshRequest) (*dto.RefreshResponse, error)
}

// Deps contiene las dependencias del service.
type Deps struct {
	Users  repo.UserRepository
	Hasher PasswordHasher
	Issuer *jwtx.Issuer
	Policy password.Policy
	Now    func() time.Time
	NewID  func() string
}

// Errores de auth
var (
	ErrMissingFields       = fmt.Errorf("missing required fields")
	ErrPasswordTooShort    = fmt.Errorf("password too short")
	ErrUserExists          = fmt.Errorf("user already exists")
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials")
	ErrInvalidRefreshToken = fmt.Errorf("invalid refresh token")
)

// TokenType es el token_type de todas las respuestas.
const TokenType = "Bearer"
