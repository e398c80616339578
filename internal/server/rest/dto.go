package rest

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bind decodes the JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	return validate.Struct(dst)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type claimRequest struct {
	ClaimToken string `json:"claimToken" validate:"required"`
}

type processRequest struct {
	Text           string                `json:"text" validate:"required"`
	Filename       string                `json:"filename" validate:"max=255"`
	ContentType    string                `json:"contentType" validate:"max=255"`
	OutputFormats  []models.OutputFormat `json:"outputFormats" validate:"required,min=1,dive,oneof=summary flashcards quiz all"`
	SummaryOptions models.SummaryOptions `json:"summaryOptions"`
	QuizOptions    models.QuizOptions    `json:"quizOptions"`
}

type regenerateOptions struct {
	SummaryOptions models.SummaryOptions `json:"summaryOptions"`
	QuizOptions    models.QuizOptions    `json:"quizOptions"`
}

type regenerateRequest struct {
	OutputFormats []models.OutputFormat `json:"outputFormats" validate:"required,min=1,dive,oneof=summary flashcards quiz all"`
	Options       regenerateOptions     `json:"options"`
}

type explainSnippetRequest struct {
	Snippet string `json:"snippet" validate:"required"`
	Context string `json:"context"`
}

type flashcardInteractRequest struct {
	Term       string                 `json:"term" validate:"required"`
	Definition string                 `json:"definition" validate:"required"`
	Action     models.FlashcardAction `json:"action" validate:"required,oneof=explain example mnemonic ask"`
	Question   string                 `json:"question" validate:"required_if=Action ask"`
}

type quizGenerateRequest struct {
	Text        string             `json:"text" validate:"required"`
	QuizOptions models.QuizOptions `json:"quizOptions"`
}

type questionRequest struct {
	Question *models.QuizQuestion `json:"question" validate:"required"`
}

type answerFeedbackRequest struct {
	Question   *models.QuizQuestion `json:"question" validate:"required"`
	UserAnswer models.Answer        `json:"userAnswer"`
}

type quizChatRequest struct {
	Question *models.QuizQuestion `json:"question" validate:"required"`
	History  []models.ChatMessage `json:"history" validate:"max=200,dive"`
	Message  string               `json:"message" validate:"required"`
}

type regenerateQuestionRequest struct {
	Text       string               `json:"text"`
	Question   *models.QuizQuestion `json:"question" validate:"required"`
	Difficulty models.Difficulty    `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type processResponse struct {
	SessionID  int64                 `json:"sessionId"`
	Summary    *string               `json:"summary,omitempty"`
	Flashcards []models.Flashcard    `json:"flashcards,omitempty"`
	Quiz       []models.QuizQuestion `json:"quiz,omitempty"`
	ClaimToken *string               `json:"claimToken,omitempty"`
}

type feedbackResponse struct {
	Correct  *bool  `json:"correct"`
	Feedback string `json:"feedback"`
}

type exportResponse struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	ExpiresAt string `json:"expiresAt"`
}
