package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/smartstudy/internal/logging"
	"github.com/dmitrijs2005/smartstudy/internal/server/config"
	"github.com/dmitrijs2005/smartstudy/internal/server/generation"
	"github.com/dmitrijs2005/smartstudy/internal/server/metrics"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/smartstudy/internal/server/services"
	"github.com/stretchr/testify/require"
)

const (
	cannedSummary    = "Water evaporates, condenses into clouds and falls as precipitation."
	cannedFlashcards = `Here you go:
[{"term":"Evaporation","definition":"Water from the water cycle turning into vapor."},
 {"term":"Condensation","definition":"Vapor cooling into cloud droplets."}]`
	cannedQuiz = `{"questions":[{"id":1,"question":"Which step forms clouds?","questionType":"multiple_choice",
"options":["Condensation","Evaporation"],"correctAnswer":"Condensation","explanation":"Cooling vapor condenses."}]}`
	cannedQuestion = `{"question":"What falls from clouds?","type":"short_answer","correctAnswer":"precipitation"}`
	cannedReply    = "Think of a kettle lid collecting drops."
)

// scriptedCompleter answers by artifact, like a model that always behaves.
type scriptedCompleter struct {
	mu    sync.Mutex
	out   map[generation.Artifact]string
	errs  map[generation.Artifact]error
	calls int
}

func newScriptedCompleter() *scriptedCompleter {
	return &scriptedCompleter{
		out: map[generation.Artifact]string{
			generation.ArtifactSummary:    cannedSummary,
			generation.ArtifactFlashcards: cannedFlashcards,
			generation.ArtifactQuiz:       cannedQuiz,
			generation.ArtifactQuestion:   cannedQuestion,
		},
		errs: map[generation.Artifact]error{},
	}
}

func (s *scriptedCompleter) Complete(_ context.Context, req generation.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.errs[req.Artifact]; err != nil {
		return "", err
	}
	if out, ok := s.out[req.Artifact]; ok {
		return out, nil
	}
	return cannedReply, nil
}

func (s *scriptedCompleter) failWith(a generation.Artifact, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[a] = err
}

func (s *scriptedCompleter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type testServer struct {
	*Server
	cfg       *config.Config
	completer *scriptedCompleter
	userSvc   *services.UserService
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "rest-secret"
	cfg.DatabaseDSN = "file::memory:"
	return cfg
}

func newTestServer(t *testing.T, tweak ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := testConfig()
	for _, f := range tweak {
		f(cfg)
	}

	db := repotest.NewSQLite(t)
	m := repomanager.NewSQLiteRepositoryManager()
	log := logging.NewNop()
	met := metrics.New()
	completer := newScriptedCompleter()
	gen := generation.NewService(completer, met, log)

	us := services.NewUserService(db, m, cfg)
	ss := services.NewStudyService(db, m, gen, log)
	srv := NewServer(cfg, log, met, us, ss, services.NewExportService(ss, cfg), services.NewInteractionService(gen, log))

	return &testServer{Server: srv, cfg: cfg, completer: completer, userSvc: us}
}

// call sends a request through app.Test and returns the status and body.
func (ts *testServer) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	resp := ts.do(t, method, path, token, body)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()
	status, body := ts.call(t, http.MethodPost, "/auth/register", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

type envelope struct {
	Error struct {
		Message string            `json:"message"`
		Path    string            `json:"path"`
		Fields  map[string]string `json:"fields"`
		Detail  string            `json:"detail"`
		Stack   string            `json:"stack"`
	} `json:"error"`
	Generated *struct {
		Summary    *string           `json:"summary"`
		Flashcards []json.RawMessage `json:"flashcards"`
	} `json:"generated"`
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}
