package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/dbx"
	"github.com/dmitrijs2005/smartstudy/internal/logging"
	"github.com/dmitrijs2005/smartstudy/internal/server/generation"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ProcessInput is one upload to turn into study material.
type ProcessInput struct {
	Text          string
	OutputFormats []models.OutputFormat
	Filename      string
	ContentType   string
	UserID        *int64 // nil for anonymous callers
	Summary       models.SummaryOptions
	Quiz          models.QuizOptions
}

// ProcessResult carries the new session id and the generated artifacts.
// ClaimToken is set only for anonymous sessions.
type ProcessResult struct {
	SessionID  int64
	Summary    *string
	Flashcards []models.Flashcard
	Quiz       []models.QuizQuestion
	ClaimToken *string
}

// RegenerateOptions shape the artifacts being regenerated.
type RegenerateOptions struct {
	Summary models.SummaryOptions
	Quiz    models.QuizOptions
}

// NotSavedError means generation succeeded but the session could not be
// stored. Generated holds the artifacts so the caller does not lose them.
type NotSavedError struct {
	Generated models.ArtifactUpdate
	Err       error
}

func (e *NotSavedError) Error() string {
	return fmt.Sprintf("%v: %v", common.ErrNotSaved, e.Err)
}

func (e *NotSavedError) Unwrap() []error {
	return []error{common.ErrNotSaved, e.Err}
}

// StudyService runs the processing pipeline and the session operations.
type StudyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	generator   generation.Generator
	log         logging.Logger
}

func NewStudyService(db *sql.DB, m repomanager.RepositoryManager, g generation.Generator, log logging.Logger) *StudyService {
	return &StudyService{
		db:          db,
		repomanager: m,
		generator:   g,
		log:         log.With("module", "study"),
	}
}

// Process generates every requested artifact concurrently and stores the
// result as one session. Any generation failure aborts the request and
// nothing is stored.
func (s *StudyService) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", common.ErrValidation)
	}
	formats, err := models.ExpandFormats(in.OutputFormats)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := validateOptions(in.Summary, in.Quiz); err != nil {
		return nil, err
	}

	generated, err := s.generate(ctx, in.Text, formats, in.Summary, in.Quiz)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		UserID:        in.UserID,
		Filename:      in.Filename,
		ContentType:   in.ContentType,
		ExtractedText: in.Text,
		Summary:       generated.Summary,
		Flashcards:    generated.Flashcards,
		Quiz:          generated.Quiz,
	}
	if in.UserID == nil {
		token := uuid.NewString()
		session.ClaimToken = &token
	}

	created, err := s.repomanager.Sessions(s.db).Create(ctx, session)
	if err != nil {
		s.log.Error(ctx, "session not saved", "error", err, "formats", formats)
		return nil, &NotSavedError{Generated: generated, Err: err}
	}

	s.log.Info(ctx, "session created", "session_id", created.ID, "formats", formats, "anonymous", in.UserID == nil)

	return &ProcessResult{
		SessionID:  created.ID,
		Summary:    created.Summary,
		Flashcards: created.Flashcards,
		Quiz:       created.Quiz,
		ClaimToken: created.ClaimToken,
	}, nil
}

// Regenerate reruns generation for formats against the stored text and
// overwrites only those artifacts.
func (s *StudyService) Regenerate(ctx context.Context, sessionID, userID int64, outputFormats []models.OutputFormat, opts RegenerateOptions) (*models.Session, error) {
	formats, err := models.ExpandFormats(outputFormats)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := validateOptions(opts.Summary, opts.Quiz); err != nil {
		return nil, err
	}

	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(session.ExtractedText) == "" {
		return nil, fmt.Errorf("%w: session has no stored text", common.ErrValidation)
	}

	update, err := s.generate(ctx, session.ExtractedText, formats, opts.Summary, opts.Quiz)
	if err != nil {
		return nil, err
	}

	updated, err := s.repomanager.Sessions(s.db).UpdateArtifacts(ctx, sessionID, update)
	if err != nil {
		return nil, fmt.Errorf("error updating session: %w", err)
	}

	s.log.Info(ctx, "session regenerated", "session_id", sessionID, "formats", formats)
	return updated, nil
}

// List returns the caller's sessions, newest first.
func (s *StudyService) List(ctx context.Context, userID int64) ([]*models.Session, error) {
	list, err := s.repomanager.Sessions(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	return list, nil
}

// Get returns one of the caller's sessions.
func (s *StudyService) Get(ctx context.Context, sessionID, userID int64) (*models.Session, error) {
	return s.loadOwned(ctx, sessionID, userID)
}

// Delete removes one of the caller's sessions.
func (s *StudyService) Delete(ctx context.Context, sessionID, userID int64) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorForbidden) {
			return err
		}
		return fmt.Errorf("error deleting session: %w", err)
	}
	s.log.Info(ctx, "session deleted", "session_id", sessionID)
	return nil
}

// Claim attaches an anonymous session to userID. Each claim token works once.
func (s *StudyService) Claim(ctx context.Context, token string, userID int64) (*models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: claim token is required", common.ErrValidation)
	}

	var claimed *models.Session
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		claimed, err = s.repomanager.Sessions(tx).Claim(ctx, token, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error claiming session: %w", err)
	}

	s.log.Info(ctx, "session claimed", "session_id", claimed.ID)
	return claimed, nil
}

// loadOwned applies the ownership policy: missing and anonymous sessions are
// not found, sessions of other users are forbidden.
func (s *StudyService) loadOwned(ctx context.Context, sessionID, userID int64) (*models.Session, error) {
	session, err := s.repomanager.Sessions(s.db).GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading session: %w", err)
	}
	if session.UserID == nil {
		return nil, common.ErrorNotFound
	}
	if !session.OwnedBy(userID) {
		return nil, common.ErrorForbidden
	}
	return session, nil
}

// generate runs one generator call per format. The first failure cancels the
// others.
func (s *StudyService) generate(ctx context.Context, text string, formats []models.OutputFormat,
	summaryOpts models.SummaryOptions, quizOpts models.QuizOptions) (models.ArtifactUpdate, error) {

	var out models.ArtifactUpdate
	g, gctx := errgroup.WithContext(ctx)

	for _, f := range formats {
		switch f {
		case models.FormatSummary:
			g.Go(func() error {
				summary, err := s.generator.Summary(gctx, text, summaryOpts)
				if err != nil {
					return err
				}
				out.Summary = &summary
				return nil
			})
		case models.FormatFlashcards:
			g.Go(func() error {
				cards, err := s.generator.Flashcards(gctx, text)
				out.Flashcards = cards
				return err
			})
		case models.FormatQuiz:
			g.Go(func() error {
				quiz, err := s.generator.Quiz(gctx, text, quizOpts)
				out.Quiz = quiz
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return models.ArtifactUpdate{}, err
	}
	return out, nil
}

func validateOptions(summary models.SummaryOptions, quiz models.QuizOptions) error {
	var problems []string

	switch summary.LengthPreference {
	case "", models.LengthShort, models.LengthMedium, models.LengthLong:
	default:
		problems = append(problems, fmt.Sprintf("unknown lengthPreference %q", summary.LengthPreference))
	}
	switch summary.StylePreference {
	case "", models.StyleParagraph, models.StyleBullets:
	default:
		problems = append(problems, fmt.Sprintf("unknown stylePreference %q", summary.StylePreference))
	}
	for _, t := range quiz.QuestionTypes {
		if !t.Valid() {
			problems = append(problems, fmt.Sprintf("unknown questionType %q", t))
		}
	}
	if quiz.NumQuestions < 0 || quiz.NumQuestions > models.MaxQuizQuestions {
		problems = append(problems, fmt.Sprintf("numQuestions must be between 1 and %d", models.MaxQuizQuestions))
	}
	if !validDifficulty(quiz.Difficulty, true) {
		problems = append(problems, fmt.Sprintf("unknown difficulty %q", quiz.Difficulty))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func validDifficulty(d models.Difficulty, allowEmpty bool) bool {
	switch d {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return true
	case "":
		return allowEmpty
	}
	return false
}
