// Package migrations embeds the goose SQL migrations for every supported
// dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql
var sqliteFS embed.FS

//go:embed postgres/*.sql
var postgresFS embed.FS

// SQLite holds migrations for modernc.org/sqlite.
var SQLite = mustSub(sqliteFS, "sqlite")

// Postgres holds migrations for PostgreSQL (pgx).
var Postgres = mustSub(postgresFS, "postgres")

func mustSub(f embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
