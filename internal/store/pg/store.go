// Package pg implementa repository.Store sobre PostgreSQL (pgxpool).
package pg

import (
	"context"
	"errors"
	"fmt"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/idryos/idryos-auth/internal/store/migrate"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// uniqueViolation es el SQLSTATE 23505.
const uniqueViolation = "23505"

type Store struct{ pool *pgxpool.Pool }

type Options struct {
	MaxConns int32
	// Migrate aplica las migraciones embebidas al abrir.
	Migrate bool
}

func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		pcfg.MaxConns = opts.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	s := &Store{pool: pool}
	if opts.Migrate {
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

// Migrate corre goose sobre un *sql.DB que comparte el pool.
func (s *Store) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()
	return migrate.Up(ctx, db, migrate.Postgres)
}

// Pool expone el pool para métricas.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Users() repo.UserRepository     { return userRepo{s.pool} }
func (s *Store) Clients() repo.ClientRepository { return clientRepo{s.pool} }
func (s *Store) Tokens() repo.TokenRepository   { return tokenRepo{s.pool} }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool (idempotente).
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func notFound(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

var _ repo.Store = (*Store)(nil)
