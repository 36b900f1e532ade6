// Package migrations embebe las migraciones SQL (goose) por dialecto.
package migrations

import "embed"

// FS contiene postgres/*.sql y sqlite/*.sql.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
