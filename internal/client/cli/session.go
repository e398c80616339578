package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/smartstudy/internal/client/api"
)

var defaultFormats = []string{"all"}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("session id is required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session id %q", args[0])
	}
	return id, nil
}

func contentTypeOf(path string) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		return "text/plain"
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// Process reads a local text file and sends it for processing.
// Usage: process <file> [summary|flashcards|quiz|all ...]
func (a *App) Process(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.fail(errors.New("usage: process <file> [formats...]"))
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return a.fail(err)
	}

	formats := defaultFormats
	if len(args) > 1 {
		formats = args[1:]
	}

	res, err := a.api.Process(ctx, api.ProcessRequest{
		Text:          string(data),
		Filename:      filepath.Base(args[0]),
		ContentType:   contentTypeOf(args[0]),
		OutputFormats: formats,
	})
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Session %d created\n", res.SessionID)
	renderArtifacts(a.out, res.Summary, res.Flashcards, res.Quiz)
	if res.ClaimToken != nil {
		fmt.Fprintf(a.out, "Not logged in. Log in and run 'claim %s' to keep this session.\n", *res.ClaimToken)
	}
	return nil
}

func (a *App) List(ctx context.Context) error {
	sessions, err := a.api.ListSessions(ctx)
	if err != nil {
		return a.fail(err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(a.out, "No sessions yet")
		return nil
	}

	for _, s := range sessions {
		fmt.Fprintf(a.out, "%d\t%s\t%s\t%s\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), displayName(s), contents(s))
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return a.fail(err)
	}

	s, err := a.api.GetSession(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Session %d: %s (updated %s)\n", s.ID, displayName(*s), s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	renderArtifacts(a.out, s.Summary, s.Flashcards, s.Quiz)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return a.fail(err)
	}

	if err := a.api.DeleteSession(ctx, id); err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Session %d deleted\n", id)
	return nil
}

// Regenerate re-runs generation for an owned session.
// Usage: regenerate <id> <formats...>
func (a *App) Regenerate(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return a.fail(err)
	}

	formats := defaultFormats
	if len(args) > 1 {
		formats = args[1:]
	}

	s, err := a.api.Regenerate(ctx, id, formats)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Session %d regenerated\n", s.ID)
	renderArtifacts(a.out, s.Summary, s.Flashcards, s.Quiz)
	return nil
}

func (a *App) Claim(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return a.fail(errors.New("log in before claiming a session"))
	}
	if len(args) == 0 {
		return a.fail(errors.New("claim token is required"))
	}

	s, err := a.api.Claim(ctx, args[0])
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Session %d is now yours\n", s.ID)
	return nil
}

func displayName(s api.Session) string {
	if s.Filename == "" {
		return "(pasted text)"
	}
	return s.Filename
}

func contents(s api.Session) string {
	var parts []string
	if s.Summary != nil {
		parts = append(parts, "summary")
	}
	if len(s.Flashcards) > 0 {
		parts = append(parts, fmt.Sprintf("%d flashcards", len(s.Flashcards)))
	}
	if len(s.Quiz) > 0 {
		parts = append(parts, fmt.Sprintf("%d questions", len(s.Quiz)))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
