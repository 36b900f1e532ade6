package pg

import (
	"context"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type clientRepo struct{ pool *pgxpool.Pool }

const clientCols = `id, secret_hash, name, redirect_uris, scopes, is_active, created_at`

func (r clientRepo) Create(ctx context.Context, c repo.Client) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO oauth_clients (`+clientCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.SecretHash, c.Name, nonNil(c.RedirectURIs), nonNil(c.Scopes), c.IsActive, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return repo.Storage("pg: create client", err)
	}
	return nil
}

func (r clientRepo) Get(ctx context.Context, id string) (*repo.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, `SELECT `+clientCols+` FROM oauth_clients WHERE id = $1`, id))
	if notFound(err) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, repo.Storage("pg: get client", err)
	}
	return c, nil
}

func (r clientRepo) List(ctx context.Context) ([]repo.Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientCols+` FROM oauth_clients ORDER BY id`)
	if err != nil {
		return nil, repo.Storage("pg: list clients", err)
	}
	defer rows.Close()

	var out []repo.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, repo.Storage("pg: list clients", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r clientRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE oauth_clients SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return repo.Storage("pg: update client", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// JSONB se decodifica directo a []string.
func scanClient(row pgx.Row) (*repo.Client, error) {
	var c repo.Client
	if err := row.Scan(&c.ID, &c.SecretHash, &c.Name, &c.RedirectURIs, &c.Scopes, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
