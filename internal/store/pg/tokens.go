package pg

import (
	"context"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type tokenRepo struct{ pool *pgxpool.Pool }

func (r tokenRepo) CreateCode(ctx context.Context, c repo.AuthorizationCode) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO oauth_authorization_codes (code_hash, client_id, user_id, redirect_uri, scopes, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.CodeHash, c.ClientID, c.UserID, c.RedirectURI, nonNil(c.Scopes), c.ExpiresAt, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return repo.Storage("pg: create code", err)
	}
	return nil
}

func (r tokenRepo) GetCode(ctx context.Context, codeHash, clientID string) (*repo.AuthorizationCode, error) {
	var c repo.AuthorizationCode
	err := r.pool.QueryRow(ctx,
		`SELECT code_hash, client_id, user_id, redirect_uri, scopes, expires_at, created_at
		   FROM oauth_authorization_codes WHERE code_hash = $1 AND client_id = $2`,
		codeHash, clientID,
	).Scan(&c.CodeHash, &c.ClientID, &c.UserID, &c.RedirectURI, &c.Scopes, &c.ExpiresAt, &c.CreatedAt)
	if notFound(err) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, repo.Storage("pg: get code", err)
	}
	return &c, nil
}

func (r tokenRepo) DeleteCode(ctx context.Context, codeHash string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM oauth_authorization_codes WHERE code_hash = $1`, codeHash)
	if err != nil {
		return repo.Storage("pg: delete code", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ExchangeCode: el perdedor de una carrera no ve la fila en DELETE ... RETURNING
// y la transacción se revierte sin insertar.
func (r tokenRepo) ExchangeCode(ctx context.Context, codeHash, clientID string, rt repo.RefreshToken) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var deleted string
		err := tx.QueryRow(ctx,
			`DELETE FROM oauth_authorization_codes WHERE code_hash = $1 AND client_id = $2 RETURNING code_hash`,
			codeHash, clientID,
		).Scan(&deleted)
		if notFound(err) {
			return repo.ErrNotFound
		}
		if err != nil {
			return repo.Storage("pg: consume code", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO oauth_refresh_tokens (token_hash, client_id, user_id, scopes, expires_at, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			rt.TokenHash, rt.ClientID, rt.UserID, nonNil(rt.Scopes), rt.ExpiresAt, rt.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repo.ErrConflict
			}
			return repo.Storage("pg: insert refresh token", err)
		}
		return nil
	})
}

func (r tokenRepo) GetRefreshToken(ctx context.Context, tokenHash, clientID string) (*repo.RefreshToken, error) {
	var t repo.RefreshToken
	err := r.pool.QueryRow(ctx,
		`SELECT token_hash, client_id, user_id, scopes, expires_at, created_at
		   FROM oauth_refresh_tokens WHERE token_hash = $1 AND client_id = $2`,
		tokenHash, clientID,
	).Scan(&t.TokenHash, &t.ClientID, &t.UserID, &t.Scopes, &t.ExpiresAt, &t.CreatedAt)
	if notFound(err) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, repo.Storage("pg: get refresh token", err)
	}
	return &t, nil
}
