package dbx

import (
	"fmt"
	"strings"
)

// Dialect identifies the SQL backend behind a DSN.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// GooseDialect is the name goose uses for the dialect.
func (d Dialect) GooseDialect() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite3"
}

// ParseDSN detects the dialect of dsn and returns the connection string
// the driver expects.
//
//	postgres://..., postgresql://...   -> postgres, unchanged
//	sqlite://path, file:path, :memory: -> sqlite, "sqlite://" stripped
//	bare path ending in .db/.sqlite    -> sqlite
func ParseDSN(dsn string) (Dialect, string, error) {
	s := strings.TrimSpace(dsn)
	lower := strings.ToLower(s)

	switch {
	case s == "":
		return "", "", fmt.Errorf("empty database dsn")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres, s, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return DialectSQLite, s[len("sqlite://"):], nil
	case strings.HasPrefix(lower, "file:"), s == ":memory:",
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"):
		return DialectSQLite, s, nil
	default:
		return "", "", fmt.Errorf("unsupported database dsn %q", dsn)
	}
}
