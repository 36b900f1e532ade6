package pg

import (
	"context"
	"time"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepo struct{ pool *pgxpool.Pool }

const userCols = `id, username, email, password_hash, did, is_active, created_at, updated_at`

func (r userRepo) Create(ctx context.Context, u repo.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (`+userCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.DID, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return repo.Storage("pg: create user", err)
	}
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*repo.User, error) {
	return r.getOne(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*repo.User, error) {
	return r.getOne(ctx, `SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`, email)
}

func (r userRepo) getOne(ctx context.Context, q, arg string) (*repo.User, error) {
	var u repo.User
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if notFound(err) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, repo.Storage("pg: get user", err)
	}
	return &u, nil
}

func (r userRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) OR username = $2)`,
		email, username,
	).Scan(&exists)
	if err != nil {
		return false, repo.Storage("pg: user exists", err)
	}
	return exists, nil
}

func (r userRepo) BindDID(ctx context.Context, userID, did string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET did = $1, updated_at = $2 WHERE id = $3`, did, at, userID)
	if err != nil {
		return repo.Storage("pg: bind did", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r userRepo) SetActive(ctx context.Context, userID string, active bool, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`, active, at, userID)
	if err != nil {
		return repo.Storage("pg: set active", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
