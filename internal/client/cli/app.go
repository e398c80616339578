package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/smartstudy/internal/client/api"
	"github.com/dmitrijs2005/smartstudy/internal/client/config"
)

// StudyAPI is the subset of the REST client the commands use.
type StudyAPI interface {
	Register(ctx context.Context, email, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.User, error)
	Process(ctx context.Context, req api.ProcessRequest) (*api.ProcessResult, error)
	ListSessions(ctx context.Context) ([]api.Session, error)
	GetSession(ctx context.Context, id int64) (*api.Session, error)
	DeleteSession(ctx context.Context, id int64) error
	Regenerate(ctx context.Context, id int64, formats []string) (*api.Session, error)
	Claim(ctx context.Context, claimToken string) (*api.Session, error)
	Export(ctx context.Context, id int64) (*api.ExportResult, error)
	Download(ctx context.Context, id int64) ([]byte, error)
	SetToken(token string)
	Token() string
}

type App struct {
	config *config.Config
	api    StudyAPI
	email  string
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		api:    api.NewClient(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	fmt.Fprintf(a.out, "Welcome to studyctl, connected to %s (type 'help' for commands)\n", a.config.ServerURL)
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

func (a *App) getStatus() string {
	if a.email == "" {
		return "(anonymous)"
	}
	return fmt.Sprintf("(%s)", a.email)
}

// fail reports err to the user. A rejected token logs the user out so the
// next command does not fail the same way.
func (a *App) fail(err error) error {
	if a.isLoggedIn() && api.IsAuthError(err) {
		a.api.SetToken("")
		a.email = ""
		fmt.Fprintln(a.out, "Your session has expired, please log in again.")
		return err
	}
	fmt.Fprintln(a.out, "Error:", err)
	return err
}
