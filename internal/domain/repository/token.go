package repository

import (
	"context"
	"time"
)

type AuthorizationCode struct {
	CodeHash    string
	ClientID    string
	UserID      string
	RedirectURI string
	Scopes      []string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (c AuthorizationCode) Expired(now time.Time) bool { return !now.Before(c.ExpiresAt) }

// RefreshToken es el refresh token opaco del flujo OAuth (no el JWT de /auth).
type RefreshToken struct {
	TokenHash string
	ClientID  string
	UserID    string
	Scopes    []string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t RefreshToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }

type TokenRepository interface {
	CreateCode(ctx context.Context, c AuthorizationCode) error
	// GetCode busca por hash restringido al cliente.
	GetCode(ctx context.Context, codeHash, clientID string) (*AuthorizationCode, error)
	DeleteCode(ctx context.Context, codeHash string) error
	// ExchangeCode borra el código e inserta el refresh token en una sola
	// transacción. Si el código ya no existe devuelve ErrNotFound y no inserta.
	ExchangeCode(ctx context.Context, codeHash, clientID string, rt RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash, clientID string) (*RefreshToken, error)
}

// Store agrupa los repositorios de un backend.
type Store interface {
	Users() UserRepository
	Clients() ClientRepository
	Tokens() TokenRepository
	Ping(ctx context.Context) error
	Close() error
}
