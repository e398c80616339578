// Package common defines shared constants and sentinel errors used across
// the server and client layers of Smart Study. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrValidation     = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Generation errors.
	ErrMissingAPIKey   = errors.New("ai api key is not configured")
	ErrSafetyBlocked   = errors.New("content blocked by safety filter")
	ErrMalformedOutput = errors.New("malformed model output")

	// Pipeline errors.
	ErrNotSaved = errors.New("generated but not saved")

	// Export errors.
	ErrExportDisabled = errors.New("export is not configured")
)
