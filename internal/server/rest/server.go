// Package rest exposes the study services over a JSON HTTP API built on
// Fiber.
package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/logging"
	"github.com/dmitrijs2005/smartstudy/internal/server/config"
	"github.com/dmitrijs2005/smartstudy/internal/server/metrics"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/dmitrijs2005/smartstudy/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// Users is the credential service used by the auth routes and middleware.
type Users interface {
	Register(ctx context.Context, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Verify(ctx context.Context, token string) (*services.Principal, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
}

// Study runs the processing pipeline and the session operations.
type Study interface {
	Process(ctx context.Context, in services.ProcessInput) (*services.ProcessResult, error)
	Regenerate(ctx context.Context, sessionID, userID int64, formats []models.OutputFormat, opts services.RegenerateOptions) (*models.Session, error)
	List(ctx context.Context, userID int64) ([]*models.Session, error)
	Get(ctx context.Context, sessionID, userID int64) (*models.Session, error)
	Delete(ctx context.Context, sessionID, userID int64) error
	Claim(ctx context.Context, token string, userID int64) (*models.Session, error)
}

// Exporter renders sessions as Markdown.
type Exporter interface {
	Download(ctx context.Context, sessionID, userID int64) (string, []byte, error)
	Export(ctx context.Context, sessionID, userID int64) (*services.ExportResult, error)
}

// Interactions serves the stateless study helpers.
type Interactions interface {
	ExplainSnippet(ctx context.Context, snippet, surrounding string) (string, error)
	FlashcardInteract(ctx context.Context, card models.Flashcard, action models.FlashcardAction, question string) (string, error)
	GenerateQuiz(ctx context.Context, text string, opts models.QuizOptions) ([]models.QuizQuestion, error)
	AnswerFeedback(ctx context.Context, q models.QuizQuestion, userAnswer models.Answer) (*services.Feedback, error)
	QuestionExplanation(ctx context.Context, q models.QuizQuestion) (string, error)
	Chat(ctx context.Context, q models.QuizQuestion, history []models.ChatMessage, message string) (string, error)
	RegenerateQuestion(ctx context.Context, text string, q models.QuizQuestion, difficulty models.Difficulty) (models.QuizQuestion, error)
}

type Server struct {
	config       *config.Config
	logger       logging.Logger
	metrics      *metrics.Metrics
	users        Users
	study        Study
	exporter     Exporter
	interactions Interactions
	app          *fiber.App
}

func NewServer(c *config.Config, l logging.Logger, m *metrics.Metrics,
	us Users, ss Study, ex Exporter, is Interactions) *Server {

	s := &Server{
		config:       c,
		logger:       l.With("module", "rest_server"),
		metrics:      m,
		users:        us,
		study:        ss,
		exporter:     ex,
		interactions: is,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "smartstudy",
		DisableStartupMessage: true,
		BodyLimit:             c.BodyLimitMB * 1024 * 1024,
		ErrorHandler:          s.handleError,
		ReadTimeout:           15 * time.Second,
		IdleTimeout:           90 * time.Second,
	})
	s.routes()

	return s
}

// App exposes the Fiber application, mostly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(requestid.New(requestid.Config{Header: common.RequestIDHeader}))
	s.app.Use(s.observe)
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace:  true,
		StackTraceHandler: captureStack,
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + common.AuthorizationHeader,
	}))

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	s.app.Use(s.rateLimiter())

	required := s.authenticate(true)
	optional := s.authenticate(false)

	a := s.app.Group("/auth")
	a.Post("/register", s.register)
	a.Post("/login", s.login)
	a.Get("/me", required, s.me)

	st := s.app.Group("/study")
	st.Post("/process", optional, s.process)

	st.Get("/sessions", required, s.listSessions)
	st.Post("/sessions/claim", required, s.claimSession)
	st.Get("/sessions/:id", required, s.getSession)
	st.Delete("/sessions/:id", required, s.deleteSession)
	st.Put("/sessions/:id/regenerate", required, s.regenerateSession)
	st.Get("/sessions/:id/download", required, s.downloadSession)
	st.Post("/sessions/:id/export", required, s.exportSession)

	st.Post("/explain-snippet", optional, s.explainSnippet)
	st.Post("/flashcard-interact", optional, s.flashcardInteract)
	st.Post("/quiz-generate", optional, s.quizGenerate)
	st.Post("/quiz-answer-feedback", optional, s.quizAnswerFeedback)
	st.Post("/quiz-question-explanation", optional, s.quizQuestionExplanation)
	st.Post("/quiz-chat", optional, s.quizChat)
	st.Post("/quiz-regenerate-question", optional, s.quizRegenerateQuestion)
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping REST server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting REST server", "address", s.config.Addr)

	if err := s.app.Listen(s.config.Addr); err != nil {
		return err
	}

	return nil
}
