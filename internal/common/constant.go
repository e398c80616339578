package common

const (
	// AuthorizationHeader carries the bearer token on API requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix precedes the token in AuthorizationHeader.
	BearerPrefix = "Bearer "

	// RequestIDHeader is echoed on every response.
	RequestIDHeader = "X-Request-ID"
)
