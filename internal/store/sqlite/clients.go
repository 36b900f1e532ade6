package sqlite

import (
	"context"
	"database/sql"
	"errors"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
)

type clientRepo struct{ db *sql.DB }

const clientCols = `id, secret_hash, name, redirect_uris, scopes, is_active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r clientRepo) Create(ctx context.Context, c repo.Client) error {
	uris, err := encodeList(c.RedirectURIs)
	if err != nil {
		return err
	}
	scopes, err := encodeList(c.Scopes)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO oauth_clients (`+clientCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SecretHash, c.Name, uris, scopes, boolInt(c.IsActive), ts(c.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return repo.Storage("sqlite: create client", err)
	}
	return nil
}

func (r clientRepo) Get(ctx context.Context, id string) (*repo.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, `SELECT `+clientCols+` FROM oauth_clients WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, repo.Storage("sqlite: get client", err)
	}
	return c, nil
}

func (r clientRepo) List(ctx context.Context) ([]repo.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientCols+` FROM oauth_clients ORDER BY id`)
	if err != nil {
		return nil, repo.Storage("sqlite: list clients", err)
	}
	defer rows.Close()

	var out []repo.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, repo.Storage("sqlite: list clients", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r clientRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE oauth_clients SET is_active = ? WHERE id = ?`, boolInt(active), id)
	if err != nil {
		return repo.Storage("sqlite: update client", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func scanClient(row rowScanner) (*repo.Client, error) {
	var (
		c            repo.Client
		uris, scopes string
		active       int
		created      string
	)
	if err := row.Scan(&c.ID, &c.SecretHash, &c.Name, &uris, &scopes, &active, &created); err != nil {
		return nil, err
	}
	var err error
	if c.RedirectURIs, err = decodeList(uris); err != nil {
		return nil, err
	}
	if c.Scopes, err = decodeList(scopes); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTS(created); err != nil {
		return nil, err
	}
	c.IsActive = active != 0
	return &c, nil
}
