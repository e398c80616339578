package models

import "time"

// Session is one unit of study material: the extracted source text plus
// whatever artifacts were generated from it. A nil artifact field means the
// artifact was never requested.
type Session struct {
	ID            int64          `json:"id"`
	UserID        *int64         `json:"userId"`
	Filename      string         `json:"filename"`
	ContentType   string         `json:"contentType"`
	ExtractedText string         `json:"extractedText,omitempty"`
	Summary       *string        `json:"summary"`
	Flashcards    []Flashcard    `json:"flashcards"`
	Quiz          []QuizQuestion `json:"quiz"`
	ClaimToken    *string        `json:"-"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// OwnedBy reports whether the session belongs to userID.
func (s *Session) OwnedBy(userID int64) bool {
	return s.UserID != nil && *s.UserID == userID
}

// ArtifactUpdate lists the artifact fields to overwrite. Nil fields are
// left untouched.
type ArtifactUpdate struct {
	Summary    *string
	Flashcards []Flashcard
	Quiz       []QuizQuestion
}

// Empty reports whether the update changes nothing.
func (u ArtifactUpdate) Empty() bool {
	return u.Summary == nil && u.Flashcards == nil && u.Quiz == nil
}
