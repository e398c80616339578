package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/logging"
	"github.com/dmitrijs2005/smartstudy/internal/server/generation"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
)

// maxChatHistory bounds how many earlier turns are replayed to the model.
const maxChatHistory = 20

// Feedback is the result of grading one quiz answer. Correct is nil when
// the model judged a short answer.
type Feedback struct {
	Correct  *bool
	Feedback string
}

// InteractionService serves the stateless study helpers. Nothing here
// touches persistence.
type InteractionService struct {
	generator generation.Generator
	log       logging.Logger
}

func NewInteractionService(g generation.Generator, log logging.Logger) *InteractionService {
	return &InteractionService{generator: g, log: log.With("module", "interaction")}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

func (s *InteractionService) ExplainSnippet(ctx context.Context, snippet, surrounding string) (string, error) {
	if strings.TrimSpace(snippet) == "" {
		return "", invalid("snippet is required")
	}
	return s.generator.ExplainSnippet(ctx, snippet, surrounding)
}

func (s *InteractionService) FlashcardInteract(ctx context.Context, card models.Flashcard, action models.FlashcardAction, question string) (string, error) {
	if strings.TrimSpace(card.Term) == "" || strings.TrimSpace(card.Definition) == "" {
		return "", invalid("term and definition are required")
	}
	switch action {
	case models.FlashcardExplain, models.FlashcardExample, models.FlashcardMnemonic:
	case models.FlashcardAsk:
		if strings.TrimSpace(question) == "" {
			return "", invalid("question is required for action %q", action)
		}
	default:
		return "", invalid("unknown action %q", action)
	}
	return s.generator.FlashcardInteraction(ctx, card, action, question)
}

func (s *InteractionService) GenerateQuiz(ctx context.Context, text string, opts models.QuizOptions) ([]models.QuizQuestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("text is required")
	}
	if err := validateOptions(models.SummaryOptions{}, opts); err != nil {
		return nil, err
	}
	return s.generator.Quiz(ctx, text, opts)
}

// AnswerFeedback grades userAnswer locally for multiple_choice and
// select_all and asks the model for feedback. Short answers are judged by
// the model alone.
func (s *InteractionService) AnswerFeedback(ctx context.Context, q models.QuizQuestion, userAnswer models.Answer) (*Feedback, error) {
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if userAnswer.IsZero() {
		return nil, invalid("userAnswer is required")
	}

	var correct *bool
	if q.QuestionType != models.QuestionShortAnswer {
		ok := q.CorrectAnswer.Matches(userAnswer)
		correct = &ok
	}

	text, err := s.generator.QuizAnswerFeedback(ctx, q, userAnswer, correct)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "answer graded", "question_type", string(q.QuestionType), "graded_locally", correct != nil)
	return &Feedback{Correct: correct, Feedback: text}, nil
}

func (s *InteractionService) QuestionExplanation(ctx context.Context, q models.QuizQuestion) (string, error) {
	if err := validateQuestion(q); err != nil {
		return "", err
	}
	return s.generator.QuizQuestionExplanation(ctx, q)
}

func (s *InteractionService) Chat(ctx context.Context, q models.QuizQuestion, history []models.ChatMessage, message string) (string, error) {
	if err := validateQuestion(q); err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" {
		return "", invalid("message is required")
	}
	for i, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			return "", invalid("history[%d]: role must be user or assistant", i)
		}
	}
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	return s.generator.QuizChat(ctx, q, history, message)
}

func (s *InteractionService) RegenerateQuestion(ctx context.Context, text string, q models.QuizQuestion, difficulty models.Difficulty) (models.QuizQuestion, error) {
	if err := validateQuestion(q); err != nil {
		return models.QuizQuestion{}, err
	}
	if !validDifficulty(difficulty, true) {
		return models.QuizQuestion{}, invalid("unknown difficulty %q", difficulty)
	}
	return s.generator.RegenerateQuizQuestion(ctx, text, q, difficulty)
}

func validateQuestion(q models.QuizQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return invalid("question text is required")
	}
	if !q.QuestionType.Valid() {
		return invalid("unknown questionType %q", q.QuestionType)
	}
	if q.CorrectAnswer.IsZero() {
		return invalid("question correctAnswer is required")
	}
	return nil
}
