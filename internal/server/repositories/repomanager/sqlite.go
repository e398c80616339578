package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/smartstudy/internal/dbx"
	"github.com/dmitrijs2005/smartstudy/internal/server/migrations"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/users"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Dialect() dbx.Dialect {
	return dbx.DialectSQLite
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runGoose(ctx, db, migrations.SQLite, dbx.DialectSQLite)
}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}
