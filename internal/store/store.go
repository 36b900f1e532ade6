// Package store elige el adapter de persistencia según el esquema del DSN.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/idryos/idryos-auth/internal/store/memory"
	"github.com/idryos/idryos-auth/internal/store/migrate"
	"github.com/idryos/idryos-auth/internal/store/pg"
	"github.com/idryos/idryos-auth/internal/store/sqlite"
	"github.com/jackc/pgx/v5/stdlib"
)

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

type Options struct {
	MaxConns int32
}

// ParseDSN separa driver y el resto del DSN que entiende cada adapter.
//
//	memory://                    -> memory
//	sqlite://./data/idryos.db    -> sqlite, "./data/idryos.db"
//	postgres://user@host/db      -> postgres, DSN completo
func ParseDSN(dsn string) (Driver, string, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "memory" || strings.HasPrefix(dsn, "memory://"):
		return DriverMemory, "", nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite:"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn, nil
	default:
		return "", "", fmt.Errorf("store: unsupported DATABASE_URL scheme %q", schemeOf(dsn))
	}
}

func schemeOf(dsn string) string {
	if i := strings.Index(dsn, ":"); i > 0 {
		return dsn[:i]
	}
	return dsn
}

// Open abre el store y deja el esquema migrado.
func Open(ctx context.Context, dsn string, opts Options) (repo.Store, error) {
	driver, rest, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	switch driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		return sqlite.Open(ctx, rest)
	case DriverPostgres:
		return pg.New(ctx, rest, pg.Options{MaxConns: opts.MaxConns, Migrate: true})
	}
	return nil, fmt.Errorf("store: unknown driver %q", driver)
}

// SQL expone el *sql.DB y el dialecto goose del store para la CLI de
// migraciones. El closer libera el handle cuando se abrió uno nuevo.
func SQL(st repo.Store) (*sql.DB, migrate.Dialect, func() error, error) {
	switch s := st.(type) {
	case *sqlite.Store:
		return s.DB(), migrate.SQLite, func() error { return nil }, nil
	case *pg.Store:
		db := stdlib.OpenDBFromPool(s.Pool())
		return db, migrate.Postgres, db.Close, nil
	}
	return nil, "", nil, fmt.Errorf("store: %T has no SQL schema", st)
}
