package sqlite

import (
	"context"
	"database/sql"
	"errors"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
)

type tokenRepo struct{ db *sql.DB }

func (r tokenRepo) CreateCode(ctx context.Context, c repo.AuthorizationCode) error {
	scopes, err := encodeList(c.Scopes)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO oauth_authorization_codes (code_hash, client_id, user_id, redirect_uri, scopes, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.CodeHash, c.ClientID, c.UserID, c.RedirectURI, scopes, ts(c.ExpiresAt), ts(c.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return repo.Storage("sqlite: create code", err)
	}
	return nil
}

func (r tokenRepo) GetCode(ctx context.Context, codeHash, clientID string) (*repo.AuthorizationCode, error) {
	var (
		c                repo.AuthorizationCode
		scopes           string
		expires, created string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT code_hash, client_id, user_id, redirect_uri, scopes, expires_at, created_at
		   FROM oauth_authorization_codes WHERE code_hash = ? AND client_id = ?`,
		codeHash, clientID,
	).Scan(&c.CodeHash, &c.ClientID, &c.UserID, &c.RedirectURI, &scopes, &expires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, repo.Storage("sqlite: get code", err)
	}
	if c.Scopes, err = decodeList(scopes); err != nil {
		return nil, err
	}
	if c.ExpiresAt, err = parseTS(expires); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTS(created); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r tokenRepo) DeleteCode(ctx context.Context, codeHash string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM oauth_authorization_codes WHERE code_hash = ?`, codeHash)
	if err != nil {
		return repo.Storage("sqlite: delete code", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r tokenRepo) ExchangeCode(ctx context.Context, codeHash, clientID string, rt repo.RefreshToken) (err error) {
	scopes, err := encodeList(rt.Scopes)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return repo.Storage("sqlite: begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var deleted string
	err = tx.QueryRowContext(ctx,
		`DELETE FROM oauth_authorization_codes WHERE code_hash = ? AND client_id = ? RETURNING code_hash`,
		codeHash, clientID,
	).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return repo.ErrNotFound
	}
	if err != nil {
		return repo.Storage("sqlite: consume code", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO oauth_refresh_tokens (token_hash, client_id, user_id, scopes, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rt.TokenHash, rt.ClientID, rt.UserID, scopes, ts(rt.ExpiresAt), ts(rt.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return repo.Storage("sqlite: insert refresh token", err)
	}
	if err = tx.Commit(); err != nil {
		return repo.Storage("sqlite: commit", err)
	}
	return nil
}

func (r tokenRepo) GetRefreshToken(ctx context.Context, tokenHash, clientID string) (*repo.RefreshToken, error) {
	var (
		t                repo.RefreshToken
		scopes           string
		expires, created string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, client_id, user_id, scopes, expires_at, created_at
		   FROM oauth_refresh_tokens WHERE token_hash = ? AND client_id = ?`,
		tokenHash, clientID,
	).Scan(&t.TokenHash, &t.ClientID, &t.UserID, &scopes, &expires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, repo.Storage("sqlite: get refresh token", err)
	}
	if t.Scopes, err = decodeList(scopes); err != nil {
		return nil, err
	}
	if t.ExpiresAt, err = parseTS(expires); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTS(created); err != nil {
		return nil, err
	}
	return &t, nil
}
