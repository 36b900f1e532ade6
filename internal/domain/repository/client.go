package repository

import (
	"context"
	"slices"
	"time"
)

// Client es un cliente OAuth registrado fuera de banda (CLI).
type Client struct {
	ID           string
	SecretHash   string // vacío = cliente público
	Name         string
	RedirectURIs []string
	Scopes       []string
	IsActive     bool
	CreatedAt    time.Time
}

// AllowsRedirect compara por igualdad exacta.
func (c Client) AllowsRedirect(uri string) bool {
	return uri != "" && slices.Contains(c.RedirectURIs, uri)
}

func (c Client) IsConfidential() bool { return c.SecretHash != "" }

// GrantsScopes reporta si todos los scopes pedidos están registrados.
func (c Client) GrantsScopes(requested []string) bool {
	for _, s := range requested {
		if !slices.Contains(c.Scopes, s) {
			return false
		}
	}
	return true
}

type ClientRepository interface {
	Create(ctx context.Context, c Client) error
	Get(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	SetActive(ctx context.Context, id string, active bool) error
}
