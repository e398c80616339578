package services

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/dbx"
	"github.com/dmitrijs2005/smartstudy/internal/logging"
	"github.com/dmitrijs2005/smartstudy/internal/server/config"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/sessions"
	"github.com/stretchr/testify/require"
)

// fakeGenerator returns canned artifacts and counts calls.
type fakeGenerator struct {
	summary    string
	flashcards []models.Flashcard
	quiz       []models.QuizQuestion
	reply      string
	question   models.QuizQuestion

	summaryErr    error
	flashcardsErr error
	quizErr       error
	replyErr      error

	calls atomic.Int32

	lastCorrect *bool
	lastHistory []models.ChatMessage
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		summary: "The water cycle moves water between the surface and the air.",
		flashcards: []models.Flashcard{
			{Term: "Evaporation", Definition: "Water in the water cycle turning into vapor."},
			{Term: "Condensation", Definition: "Vapor cooling into cloud droplets."},
			{Term: "Precipitation", Definition: "Water falling back as rain or snow."},
		},
		quiz: []models.QuizQuestion{
			{ID: 1, Question: "Which step forms clouds?", QuestionType: models.QuestionMultipleChoice,
				Options: []string{"Condensation", "Evaporation"}, CorrectAnswer: models.SingleAnswer("Condensation"),
				Explanation: "Cooling vapor condenses."},
			{ID: 2, Question: "Pick the stages", QuestionType: models.QuestionSelectAll,
				Options:       []string{"Evaporation", "Condensation", "Fusion"},
				CorrectAnswer: models.MultiAnswer("Evaporation", "Condensation")},
		},
		reply:    "A helpful reply.",
		question: models.QuizQuestion{Question: "Fresh?", QuestionType: models.QuestionShortAnswer, CorrectAnswer: models.SingleAnswer("yes")},
	}
}

func (f *fakeGenerator) Summary(ctx context.Context, text string, opts models.SummaryOptions) (string, error) {
	f.calls.Add(1)
	return f.summary, f.summaryErr
}

func (f *fakeGenerator) Flashcards(ctx context.Context, text string) ([]models.Flashcard, error) {
	f.calls.Add(1)
	if f.flashcardsErr != nil {
		return nil, f.flashcardsErr
	}
	return f.flashcards, nil
}

func (f *fakeGenerator) Quiz(ctx context.Context, text string, opts models.QuizOptions) ([]models.QuizQuestion, error) {
	f.calls.Add(1)
	if f.quizErr != nil {
		return nil, f.quizErr
	}
	return f.quiz, nil
}

func (f *fakeGenerator) ExplainSnippet(ctx context.Context, snippet, surrounding string) (string, error) {
	f.calls.Add(1)
	return f.reply, f.replyErr
}

func (f *fakeGenerator) FlashcardInteraction(ctx context.Context, card models.Flashcard, action models.FlashcardAction, question string) (string, error) {
	f.calls.Add(1)
	return f.reply, f.replyErr
}

func (f *fakeGenerator) QuizAnswerFeedback(ctx context.Context, q models.QuizQuestion, userAnswer models.Answer, correct *bool) (string, error) {
	f.calls.Add(1)
	f.lastCorrect = correct
	return f.reply, f.replyErr
}

func (f *fakeGenerator) QuizQuestionExplanation(ctx context.Context, q models.QuizQuestion) (string, error) {
	f.calls.Add(1)
	return f.reply, f.replyErr
}

func (f *fakeGenerator) QuizChat(ctx context.Context, q models.QuizQuestion, history []models.ChatMessage, message string) (string, error) {
	f.calls.Add(1)
	f.lastHistory = history
	return f.reply, f.replyErr
}

func (f *fakeGenerator) RegenerateQuizQuestion(ctx context.Context, text string, q models.QuizQuestion, difficulty models.Difficulty) (models.QuizQuestion, error) {
	f.calls.Add(1)
	out := f.question
	out.ID = q.ID
	return out, f.replyErr
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.DatabaseDSN = "file::memory:"
	return cfg
}

type testEnv struct {
	db      *sql.DB
	manager repomanager.RepositoryManager
	gen     *fakeGenerator
	users   *UserService
	study   *StudyService
	cfg     *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := repotest.NewSQLite(t)
	m := repomanager.NewSQLiteRepositoryManager()
	gen := newFakeGenerator()
	cfg := testConfig()
	return &testEnv{
		db:      db,
		manager: m,
		gen:     gen,
		users:   NewUserService(db, m, cfg),
		study:   NewStudyService(db, m, gen, logging.NewNop()),
		cfg:     cfg,
	}
}

func (e *testEnv) register(t *testing.T, email string) int64 {
	t.Helper()
	res, err := e.users.Register(context.Background(), email, "password123")
	require.NoError(t, err)
	return res.User.ID
}

func (e *testEnv) countSessions(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n))
	return n
}

// failingSessions makes every write fail, as a broken database would.
type failingSessions struct {
	sessions.Repository
	err error
}

func (f failingSessions) Create(context.Context, *models.Session) (*models.Session, error) {
	return nil, f.err
}

type brokenWritesManager struct {
	repomanager.RepositoryManager
	err error
}

func (m brokenWritesManager) Sessions(db dbx.DBTX) sessions.Repository {
	return failingSessions{Repository: m.RepositoryManager.Sessions(db), err: m.err}
}

func tick() { time.Sleep(5 * time.Millisecond) }
