// Package generation turns extracted study text into summaries, flashcards
// and quizzes by prompting a text-generation model, and validates what the
// model sends back.
package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
)

// Generator is everything the rest of the server needs from a model backend.
type Generator interface {
	Summary(ctx context.Context, text string, opts models.SummaryOptions) (string, error)
	Flashcards(ctx context.Context, text string) ([]models.Flashcard, error)
	Quiz(ctx context.Context, text string, opts models.QuizOptions) ([]models.QuizQuestion, error)

	ExplainSnippet(ctx context.Context, snippet, surrounding string) (string, error)
	FlashcardInteraction(ctx context.Context, card models.Flashcard, action models.FlashcardAction, question string) (string, error)
	QuizAnswerFeedback(ctx context.Context, q models.QuizQuestion, userAnswer models.Answer, correct *bool) (string, error)
	QuizQuestionExplanation(ctx context.Context, q models.QuizQuestion) (string, error)
	QuizChat(ctx context.Context, q models.QuizQuestion, history []models.ChatMessage, message string) (string, error)
	RegenerateQuizQuestion(ctx context.Context, text string, q models.QuizQuestion, difficulty models.Difficulty) (models.QuizQuestion, error)
}

// Artifact names what a model call produces. It labels metrics and appears
// in malformed-output messages.
type Artifact string

const (
	ArtifactSummary     Artifact = "summary"
	ArtifactFlashcards  Artifact = "flashcards"
	ArtifactQuiz        Artifact = "quiz"
	ArtifactExplanation Artifact = "explanation"
	ArtifactInteraction Artifact = "flashcard interaction"
	ArtifactFeedback    Artifact = "feedback"
	ArtifactChat        Artifact = "chat"
	ArtifactQuestion    Artifact = "question"
)

// Request is a single prompt sent to a Completer.
type Request struct {
	Artifact    Artifact
	System      string
	Messages    []models.ChatMessage
	MaxTokens   int
	Temperature *float32 // nil means the completer default
}

// Completer sends one prompt and returns the raw model text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Recorder observes model calls.
type Recorder interface {
	ObserveGeneration(artifact, outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(string, string, time.Duration) {}

// UpstreamError is a failed call to the model API. StatusCode is the HTTP
// status the API answered with, or 0 when none is known.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream error: %v", e.Err)
	}
	return fmt.Sprintf("upstream error (status %d): %v", e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus is the status to report to API clients.
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode < 400 || e.StatusCode > 599 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// MalformedOutputError reports model output that failed to parse or validate.
type MalformedOutputError struct {
	Artifact Artifact
	Err      error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("AI returned an invalid %s response: %v", e.Artifact, e.Err)
}

// Message is the client-facing text, without the validation detail.
func (e *MalformedOutputError) Message() string {
	return fmt.Sprintf("AI returned an invalid %s response", e.Artifact)
}

func (e *MalformedOutputError) Unwrap() []error {
	return []error{common.ErrMalformedOutput, e.Err}
}

func malformed(artifact Artifact, format string, args ...any) error {
	return &MalformedOutputError{Artifact: artifact, Err: fmt.Errorf(format, args...)}
}

// Outcome classifies err for metrics labels.
func Outcome(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrMissingAPIKey):
		return "not_configured"
	case errors.Is(err, common.ErrSafetyBlocked):
		return "safety_blocked"
	case errors.Is(err, common.ErrMalformedOutput):
		return "malformed"
	case errors.As(err, &upstream) && upstream.StatusCode == http.StatusGatewayTimeout:
		return "timeout"
	case errors.As(err, &upstream):
		return "upstream_error"
	default:
		return "error"
	}
}
