package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
)

type userRepo struct{ db *sql.DB }

const userCols = `id, username, email, password_hash, did, is_active, created_at, updated_at`

func (r userRepo) Create(ctx context.Context, u repo.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.DID, boolInt(u.IsActive), ts(u.CreatedAt), ts(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return repo.Storage("sqlite: create user", err)
	}
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*repo.User, error) {
	return r.getOne(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*repo.User, error) {
	return r.getOne(ctx, `SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER(?)`, email)
}

func (r userRepo) getOne(ctx context.Context, q string, arg string) (*repo.User, error) {
	var (
		u                repo.User
		did              sql.NullString
		active           int
		created, updated string
	)
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &did, &active, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, repo.Storage("sqlite: get user", err)
	}
	if did.Valid {
		u.DID = &did.String
	}
	u.IsActive = active != 0
	if u.CreatedAt, err = parseTS(created); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTS(updated); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r userRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE LOWER(email) = LOWER(?) OR username = ?`, email, username,
	).Scan(&n)
	if err != nil {
		return false, repo.Storage("sqlite: user exists", err)
	}
	return n > 0, nil
}

func (r userRepo) BindDID(ctx context.Context, userID, did string, at time.Time) error {
	return r.update(ctx, `UPDATE users SET did = ?, updated_at = ? WHERE id = ?`, did, ts(at), userID)
}

func (r userRepo) SetActive(ctx context.Context, userID string, active bool, at time.Time) error {
	return r.update(ctx, `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`, boolInt(active), ts(at), userID)
}

func (r userRepo) update(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return repo.Storage("sqlite: update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}
