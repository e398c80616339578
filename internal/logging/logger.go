// Package logging is the structured logger used by the server. Callers depend
// on the Logger interface; New builds the slog-backed implementation.
package logging

import "context"

// Logger takes a message plus alternating keys and values:
//
//	log.Info(ctx, "session created", "session_id", id, "formats", formats)
//
// The context is passed through to the handler so request-scoped values
// can be picked up there.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
