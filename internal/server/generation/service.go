package generation

import (
	"context"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/logging"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
)

// Service implements Generator over a Completer.
type Service struct {
	completer Completer
	recorder  Recorder
	log       logging.Logger
}

var _ Generator = (*Service)(nil)

// NewService builds a Service. recorder may be nil.
func NewService(completer Completer, recorder Recorder, log logging.Logger) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{completer: completer, recorder: recorder, log: log.With("module", "generation")}
}

// call runs one completion and hands the output to parse. Metrics cover the
// whole call, parsing included.
func call[T any](ctx context.Context, s *Service, req Request, parse func(string) (T, error)) (T, error) {
	start := time.Now()

	out, err := s.completer.Complete(ctx, req)
	var result T
	if err == nil {
		result, err = parse(out)
	}

	elapsed := time.Since(start)
	outcome := Outcome(err)
	s.recorder.ObserveGeneration(string(req.Artifact), outcome, elapsed)

	if err != nil {
		s.log.Warn(ctx, "generation failed",
			"artifact", string(req.Artifact),
			"outcome", outcome,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		var zero T
		return zero, err
	}

	s.log.Debug(ctx, "generation done",
		"artifact", string(req.Artifact),
		"max_tokens", req.MaxTokens,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

func textParser(artifact Artifact) func(string) (string, error) {
	return func(out string) (string, error) { return parseText(artifact, out) }
}

func (s *Service) Summary(ctx context.Context, text string, opts models.SummaryOptions) (string, error) {
	return call(ctx, s, summaryRequest(text, opts), textParser(ArtifactSummary))
}

func (s *Service) Flashcards(ctx context.Context, text string) ([]models.Flashcard, error) {
	return call(ctx, s, flashcardsRequest(text), parseFlashcards)
}

func (s *Service) Quiz(ctx context.Context, text string, opts models.QuizOptions) ([]models.QuizQuestion, error) {
	opts = opts.WithDefaults()
	return call(ctx, s, quizRequest(text, opts), func(out string) ([]models.QuizQuestion, error) {
		return parseQuiz(out, opts.NumQuestions, opts.QuestionTypes)
	})
}

func (s *Service) ExplainSnippet(ctx context.Context, snippet, surrounding string) (string, error) {
	return call(ctx, s, explainSnippetRequest(snippet, surrounding), textParser(ArtifactExplanation))
}

func (s *Service) FlashcardInteraction(ctx context.Context, card models.Flashcard, action models.FlashcardAction, question string) (string, error) {
	return call(ctx, s, flashcardRequest(card, action, question), textParser(ArtifactInteraction))
}

func (s *Service) QuizAnswerFeedback(ctx context.Context, q models.QuizQuestion, userAnswer models.Answer, correct *bool) (string, error) {
	return call(ctx, s, feedbackRequest(q, userAnswer, correct), textParser(ArtifactFeedback))
}

func (s *Service) QuizQuestionExplanation(ctx context.Context, q models.QuizQuestion) (string, error) {
	return call(ctx, s, explanationRequest(q), textParser(ArtifactExplanation))
}

func (s *Service) QuizChat(ctx context.Context, q models.QuizQuestion, history []models.ChatMessage, message string) (string, error) {
	return call(ctx, s, chatRequest(q, history, message), textParser(ArtifactChat))
}

// RegenerateQuizQuestion replaces q with a fresh question that keeps q's id.
func (s *Service) RegenerateQuizQuestion(ctx context.Context, text string, q models.QuizQuestion, difficulty models.Difficulty) (models.QuizQuestion, error) {
	fresh, err := call(ctx, s, regenerateRequest(text, q, difficulty), parseQuestion)
	if err != nil {
		return models.QuizQuestion{}, err
	}
	fresh.ID = q.ID
	return fresh, nil
}
