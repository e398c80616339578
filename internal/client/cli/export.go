package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/smartstudy/internal/filex"
	"github.com/dmitrijs2005/smartstudy/internal/netx"
)

const downloadDir = "study-notes"

// fetchPresigned is a test seam for netx.FetchPresignedURL.
var fetchPresigned = netx.FetchPresignedURL

// Export uploads a session to object storage and prints the share link.
// With a file argument the exported object is also fetched back and saved.
// Usage: export <id> [file]
func (a *App) Export(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return a.fail(err)
	}

	res, err := a.api.Export(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Exported to %s\nDownload link (valid until %s):\n%s\n",
		res.Key, res.ExpiresAt.Local().Format("2006-01-02 15:04"), res.URL)

	if len(args) < 2 {
		return nil
	}

	data, err := fetchPresigned(ctx, nil, res.URL)
	if err != nil {
		return a.fail(err)
	}
	return a.save(args[1], data)
}

// Download saves the Markdown rendering of a session.
// Without a file argument it goes to study-notes/session-<id>.md.
// Usage: download <id> [file]
func (a *App) Download(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return a.fail(err)
	}

	data, err := a.api.Download(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	path := filepath.Join(downloadDir, fmt.Sprintf("session-%d.md", id))
	if len(args) > 1 {
		path = args[1]
	}

	return a.save(path, data)
}

func (a *App) save(path string, data []byte) error {
	if err := filex.WriteFile(path, data); err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(data), path)
	return nil
}
