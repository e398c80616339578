package api

import (
	"encoding/json"
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Flashcard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// QuizQuestion keeps correctAnswer raw: it is a string or a list depending
// on the question type.
type QuizQuestion struct {
	ID            int             `json:"id"`
	Question      string          `json:"question"`
	QuestionType  string          `json:"questionType"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
}

// Answer renders the correct answer for display.
func (q QuizQuestion) Answer() string {
	var single string
	if json.Unmarshal(q.CorrectAnswer, &single) == nil {
		return single
	}
	var many []string
	if json.Unmarshal(q.CorrectAnswer, &many) == nil {
		return strings.Join(many, ", ")
	}
	return string(q.CorrectAnswer)
}

type Session struct {
	ID            int64          `json:"id"`
	Filename      string         `json:"filename"`
	ContentType   string         `json:"contentType"`
	ExtractedText string         `json:"extractedText"`
	Summary       *string        `json:"summary"`
	Flashcards    []Flashcard    `json:"flashcards"`
	Quiz          []QuizQuestion `json:"quiz"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type ProcessRequest struct {
	Text          string   `json:"text"`
	Filename      string   `json:"filename,omitempty"`
	ContentType   string   `json:"contentType,omitempty"`
	OutputFormats []string `json:"outputFormats"`
}

type ProcessResult struct {
	SessionID  int64          `json:"sessionId"`
	Summary    *string        `json:"summary"`
	Flashcards []Flashcard    `json:"flashcards"`
	Quiz       []QuizQuestion `json:"quiz"`
	ClaimToken *string        `json:"claimToken"`
}

type ExportResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}
