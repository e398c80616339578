package sessions

import "github.com/dmitrijs2005/smartstudy/internal/dbx"

// SQLiteRepository stores sessions in SQLite (modernc.org/sqlite).
type SQLiteRepository struct {
	store
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{store{db: db, bind: func(q string) string { return q }, now: utcNow}}
}
