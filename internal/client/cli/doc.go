// Package cli provides the interactive studyctl command-line client.
//
// It wires configuration, the REST API client and a small REPL. Typical flow:
// log in (or stay anonymous), process a local text file into study material,
// then browse, regenerate, export or delete sessions.
//
// Key features:
//   - Register / Login / Logout
//   - Process a file into a summary, flashcards and a quiz
//   - List / Show / Delete / Regenerate sessions
//   - Claim an anonymous session after logging in
//   - Export to object storage or download as Markdown
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
