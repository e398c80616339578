package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dmitrijs2005/smartstudy/internal/dbx"
	"github.com/pressly/goose/v3"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Open connects to the database named by dsn and returns the manager for
// its dialect. Migrations are not run here.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	dialect, conn, err := dbx.ParseDSN(dsn)
	if err != nil {
		return nil, nil, err
	}

	var m RepositoryManager
	switch dialect {
	case dbx.DialectPostgres:
		m = NewPostgresRepositoryManager()
	default:
		m = NewSQLiteRepositoryManager()
		conn = withSQLitePragmas(conn)
	}

	db, err := sql.Open(dialect.DriverName(), conn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == dbx.DialectSQLite {
		// SQLite allows one writer at a time.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return db, m, nil
}

func withSQLitePragmas(conn string) string {
	if strings.Contains(conn, "_pragma=") {
		return conn
	}
	if conn == ":memory:" {
		conn = "file::memory:"
	}
	sep := "?"
	if strings.Contains(conn, "?") {
		sep = "&"
	}
	return conn + sep + sqlitePragmas
}

func runGoose(ctx context.Context, db *sql.DB, fsys fs.FS, dialect dbx.Dialect) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect.GooseDialect()); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
