package sessions

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/smartstudy/internal/dbx"
)

// PostgresRepository stores sessions in PostgreSQL through pgx's database/sql driver.
type PostgresRepository struct {
	store
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{store{db: db, bind: rebindDollar, now: utcNow}}
}

// rebindDollar rewrites '?' placeholders as $1, $2, ...
func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
