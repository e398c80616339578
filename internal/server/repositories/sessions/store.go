package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/dbx"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
)

// store holds the SQL shared by both dialects. Queries are written with '?'
// placeholders and passed through bind before execution.
type store struct {
	db   dbx.DBTX
	bind func(query string) string
	now  func() time.Time
}

func (s *store) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	flashcards, err := encodeJSON(session.Flashcards)
	if err != nil {
		return nil, err
	}
	quiz, err := encodeJSON(session.Quiz)
	if err != nil {
		return nil, err
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	session.UpdatedAt = session.CreatedAt

	query := s.bind(`INSERT INTO sessions (user_id, filename, content_type, extracted_text, summary, flashcards, quiz, claim_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`)

	err = s.db.QueryRowContext(ctx, query,
		session.UserID, session.Filename, session.ContentType, session.ExtractedText,
		session.Summary, flashcards, quiz, session.ClaimToken,
		session.CreatedAt, session.UpdatedAt).Scan(&session.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

func (s *store) GetByID(ctx context.Context, id int64) (*models.Session, error) {
	query := s.bind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)
	return fetchOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *store) ListByUser(ctx context.Context, userID int64) ([]*models.Session, error) {
	query := s.bind(`SELECT ` + listColumns + ` FROM sessions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Session{}
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// UpdateArtifacts overwrites only the artifacts present in update and bumps
// updated_at. The extracted text is never touched.
func (s *store) UpdateArtifacts(ctx context.Context, id int64, update models.ArtifactUpdate) (*models.Session, error) {
	if update.Empty() {
		return s.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	if update.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *update.Summary)
	}
	if update.Flashcards != nil {
		v, err := encodeJSON(update.Flashcards)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "flashcards = ?")
		args = append(args, v)
	}
	if update.Quiz != nil {
		v, err := encodeJSON(update.Quiz)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "quiz = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.now(), id)

	query := s.bind(`UPDATE sessions SET ` + strings.Join(sets, ", ") + `
		 WHERE id = ?
		 RETURNING ` + sessionColumns)

	return fetchOne(s.db.QueryRowContext(ctx, query, args...))
}

func (s *store) Delete(ctx context.Context, id, ownerID int64) error {
	query := s.bind(`DELETE FROM sessions WHERE id = ? AND user_id = ?`)

	res, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 1 {
		return nil
	}

	var owner sql.NullInt64
	err = s.db.QueryRowContext(ctx, s.bind(`SELECT user_id FROM sessions WHERE id = ?`), id).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case !owner.Valid:
		return common.ErrorNotFound
	default:
		return common.ErrorForbidden
	}
}

// Claim attaches an anonymous session to userID and clears its token, so a
// token can be redeemed only once.
func (s *store) Claim(ctx context.Context, token string, userID int64) (*models.Session, error) {
	query := s.bind(`UPDATE sessions SET user_id = ?, claim_token = NULL, updated_at = ?
		 WHERE claim_token = ? AND user_id IS NULL
		 RETURNING ` + sessionColumns)

	return fetchOne(s.db.QueryRowContext(ctx, query, userID, s.now(), token))
}

func fetchOne(row *sql.Row) (*models.Session, error) {
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
