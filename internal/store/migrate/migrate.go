// Package migrate aplica las migraciones embebidas con goose.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/idryos/idryos-auth/migrations"
	"github.com/pressly/goose/v3"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// goose guarda FS y dialecto en estado global.
var mu sync.Mutex

func dir(d Dialect) (string, error) {
	switch d {
	case Postgres:
		return migrations.PostgresDir, nil
	case SQLite:
		return migrations.SQLiteDir, nil
	default:
		return "", fmt.Errorf("migrate: unknown dialect %q", d)
	}
}

func setup(d Dialect) (string, error) {
	path, err := dir(d)
	if err != nil {
		return "", err
	}
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(d)); err != nil {
		return "", fmt.Errorf("migrate: dialect: %w", err)
	}
	return path, nil
}

// Up aplica todas las migraciones pendientes.
func Up(ctx context.Context, db *sql.DB, d Dialect) error {
	mu.Lock()
	defer mu.Unlock()
	path, err := setup(d)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, path); err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}

// Down revierte la última migración.
func Down(ctx context.Context, db *sql.DB, d Dialect) error {
	mu.Lock()
	defer mu.Unlock()
	path, err := setup(d)
	if err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, path); err != nil {
		return fmt.Errorf("migrate: down: %w", err)
	}
	return nil
}

// Version devuelve la versión aplicada actual.
func Version(ctx context.Context, db *sql.DB, d Dialect) (int64, error) {
	mu.Lock()
	defer mu.Unlock()
	if _, err := setup(d); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("migrate: version: %w", err)
	}
	return v, nil
}
