package sessions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	r := NewPostgresRepository(db)
	r.now = func() time.Time { return fixedNow }
	return r, mock, db
}

var fullColumns = []string{"id", "user_id", "filename", "content_type", "extracted_text",
	"summary", "flashcards", "quiz", "claim_token", "created_at", "updated_at"}

func TestRebindDollar(t *testing.T) {
	assert.Equal(t, "a = $1 AND b = $2", rebindDollar("a = ? AND b = ?"))
	assert.Equal(t, "no params", rebindDollar("no params"))
}

func TestPostgres_Create(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	uid := int64(3)
	summary := "short"
	q := `(?s)^INSERT\s+INTO\s+sessions\s*\(user_id,.*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8,\s*\$9,\s*\$10\)\s*RETURNING\s+id\s*$`
	mock.ExpectQuery(q).
		WithArgs(&uid, "f.txt", "text/plain", "body", &summary,
			`[{"term":"t","definition":"d"}]`, nil, nil, fixedNow, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

	got, err := repo.Create(context.Background(), &models.Session{
		UserID: &uid, Filename: "f.txt", ContentType: "text/plain", ExtractedText: "body",
		Summary: &summary, Flashcards: []models.Flashcard{{Term: "t", Definition: "d"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, fixedNow, got.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Create_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+sessions`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Session{ExtractedText: "body"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgres_GetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,.*updated_at\s+FROM\s+sessions\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs(int64(10)).WillReturnRows(
		sqlmock.NewRows(fullColumns).AddRow(int64(10), int64(3), "f.txt", "text/plain", "body",
			"short", nil, `[{"id":1,"question":"q","questionType":"short_answer","options":[],"correctAnswer":"a","explanation":""}]`,
			nil, fixedNow, fixedNow))

	got, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, got.OwnedBy(3))
	assert.Equal(t, "short", *got.Summary)
	assert.Nil(t, got.Flashcards)
	require.Len(t, got.Quiz, 1)
	assert.Equal(t, models.SingleAnswer("a"), got.Quiz[0].CorrectAnswer)
}

func TestPostgres_GetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+sessions`).WithArgs(int64(1)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 1)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_GetByID_CorruptArtifact(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+sessions`).WithArgs(int64(1)).WillReturnRows(
		sqlmock.NewRows(fullColumns).AddRow(int64(1), nil, "", "", "body", nil, "{not json", nil, nil, fixedNow, fixedNow))

	_, err := repo.GetByID(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode artifact")
}

func TestPostgres_ListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*filename,.*FROM\s+sessions\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC\s*$`
	cols := []string{"id", "user_id", "filename", "content_type", "summary", "flashcards", "quiz", "created_at", "updated_at"}
	mock.ExpectQuery(q).WithArgs(int64(3)).WillReturnRows(
		sqlmock.NewRows(cols).
			AddRow(int64(2), int64(3), "b", "", nil, nil, nil, fixedNow, fixedNow).
			AddRow(int64(1), int64(3), "a", "", "s", nil, nil, fixedNow, fixedNow))

	list, err := repo.ListByUser(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, "s", *list[1].Summary)
}

func TestPostgres_UpdateArtifacts_SetsOnlyPresentFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	summary := "new"
	q := `(?s)^UPDATE\s+sessions\s+SET\s+summary\s*=\s*\$1,\s*updated_at\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s+RETURNING\s+id,.*updated_at\s*$`
	mock.ExpectQuery(q).WithArgs("new", fixedNow, int64(4)).WillReturnRows(
		sqlmock.NewRows(fullColumns).AddRow(int64(4), int64(3), "", "", "body", "new", nil, nil, nil, fixedNow.Add(-time.Hour), fixedNow))

	got, err := repo.UpdateArtifacts(context.Background(), 4, models.ArtifactUpdate{Summary: &summary})
	require.NoError(t, err)
	assert.Equal(t, "new", *got.Summary)
	assert.Equal(t, "body", got.ExtractedText)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateArtifacts_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+sessions\s+SET\s+flashcards\s*=\s*\$1,\s*quiz\s*=\s*\$2,\s*updated_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$4`
	mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateArtifacts(context.Background(), 4, models.ArtifactUpdate{
		Flashcards: []models.Flashcard{{Term: "a", Definition: "b"}},
		Quiz:       []models.QuizQuestion{},
	})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		owner    any
		ownerErr error
		want     error
	}{
		{name: "deleted", affected: 1},
		{name: "other owner", owner: int64(9), want: common.ErrorForbidden},
		{name: "anonymous", owner: nil, want: common.ErrorNotFound},
		{name: "missing", ownerErr: sql.ErrNoRows, want: common.ErrorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(`(?s)^DELETE\s+FROM\s+sessions\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`).
				WithArgs(int64(5), int64(3)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			if tt.affected == 0 {
				e := mock.ExpectQuery(`(?s)^SELECT\s+user_id\s+FROM\s+sessions\s+WHERE\s+id\s*=\s*\$1\s*$`).WithArgs(int64(5))
				if tt.ownerErr != nil {
					e.WillReturnError(tt.ownerErr)
				} else {
					e.WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(tt.owner))
				}
			}

			err := repo.Delete(context.Background(), 5, 3)
			if tt.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.want)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_Claim(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+sessions\s+SET\s+user_id\s*=\s*\$1,\s*claim_token\s*=\s*NULL,\s*updated_at\s*=\s*\$2\s+WHERE\s+claim_token\s*=\s*\$3\s+AND\s+user_id\s+IS\s+NULL`
	mock.ExpectQuery(q).WithArgs(int64(3), fixedNow, "tok").WillReturnRows(
		sqlmock.NewRows(fullColumns).AddRow(int64(8), int64(3), "", "", "body", nil, nil, nil, nil, fixedNow, fixedNow))

	got, err := repo.Claim(context.Background(), "tok", 3)
	require.NoError(t, err)
	assert.True(t, got.OwnedBy(3))
	assert.Nil(t, got.ClaimToken)
}
