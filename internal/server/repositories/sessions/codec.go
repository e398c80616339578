package sessions

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/smartstudy/internal/server/models"
)

const (
	sessionColumns = `id, user_id, filename, content_type, extracted_text, summary, flashcards, quiz, claim_token, created_at, updated_at`
	listColumns    = `id, user_id, filename, content_type, summary, flashcards, quiz, created_at, updated_at`
)

type scanner interface {
	Scan(dest ...any) error
}

// encodeJSON turns an artifact list into a nullable text value. A nil slice
// is stored as NULL.
func encodeJSON[T any](items []T) (any, error) {
	if items == nil {
		return nil, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return string(b), nil
}

func decodeJSON[T any](col sql.NullString) ([]T, error) {
	if !col.Valid {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(col.String), &items); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

type nullableColumns struct {
	userID     sql.NullInt64
	summary    sql.NullString
	flashcards sql.NullString
	quiz       sql.NullString
	claimToken sql.NullString
}

func (c *nullableColumns) apply(s *models.Session) error {
	if c.userID.Valid {
		id := c.userID.Int64
		s.UserID = &id
	}
	if c.summary.Valid {
		summary := c.summary.String
		s.Summary = &summary
	}
	if c.claimToken.Valid {
		token := c.claimToken.String
		s.ClaimToken = &token
	}

	var err error
	if s.Flashcards, err = decodeJSON[models.Flashcard](c.flashcards); err != nil {
		return err
	}
	if s.Quiz, err = decodeJSON[models.QuizQuestion](c.quiz); err != nil {
		return err
	}
	return nil
}

// scanSession reads a row selected with sessionColumns.
func scanSession(row scanner) (*models.Session, error) {
	s := &models.Session{}
	var c nullableColumns
	err := row.Scan(&s.ID, &c.userID, &s.Filename, &s.ContentType, &s.ExtractedText,
		&c.summary, &c.flashcards, &c.quiz, &c.claimToken, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := c.apply(s); err != nil {
		return nil, err
	}
	return s, nil
}

// scanListItem reads a row selected with listColumns.
func scanListItem(row scanner) (*models.Session, error) {
	s := &models.Session{}
	var c nullableColumns
	err := row.Scan(&s.ID, &c.userID, &s.Filename, &s.ContentType,
		&c.summary, &c.flashcards, &c.quiz, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := c.apply(s); err != nil {
		return nil, err
	}
	return s, nil
}
