package repository

import (
	"context"
	"time"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	DID          *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepository interface {
	// Create falla con ErrConflict si email o username ya existen.
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	// BindDID reemplaza cualquier DID previo.
	BindDID(ctx context.Context, userID, did string, at time.Time) error
	SetActive(ctx context.Context, userID string, active bool, at time.Time) error
}
