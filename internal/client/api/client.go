// Package api is a small JSON client for the Smart Study REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/common"
)

// Error is a non-2xx response decoded from the server's error envelope.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+" "+v)
	}
	return fmt.Sprintf("%d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, ", "))
}

// Unwrap lets callers match auth failures with errors.Is.
func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every request. An empty token
// makes requests anonymous.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	return json.Unmarshal(data, out)
}

func decodeError(status int, data []byte) error {
	var env struct {
		Error struct {
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}
	e := &Error{StatusCode: status}
	if json.Unmarshal(data, &env) == nil && env.Error.Message != "" {
		e.Message = env.Error.Message
		e.Fields = env.Error.Fields
	} else {
		e.Message = http.StatusText(status)
	}
	return e
}

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{"email": email, "password": password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out.User, nil
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out.User, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	var out ProcessResult
	if err := c.do(ctx, http.MethodPost, "/study/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var out struct {
		Sessions []Session `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/study/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

type sessionResponse struct {
	Session Session `json:"session"`
}

func (c *Client) GetSession(ctx context.Context, id int64) (*Session, error) {
	var out sessionResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/study/sessions/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Session, nil
}

func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/study/sessions/%d", id), nil, nil)
}

func (c *Client) Regenerate(ctx context.Context, id int64, formats []string) (*Session, error) {
	var out sessionResponse
	in := map[string]any{"outputFormats": formats}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/study/sessions/%d/regenerate", id), in, &out); err != nil {
		return nil, err
	}
	return &out.Session, nil
}

func (c *Client) Claim(ctx context.Context, claimToken string) (*Session, error) {
	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, "/study/sessions/claim", map[string]string{"claimToken": claimToken}, &out); err != nil {
		return nil, err
	}
	return &out.Session, nil
}

func (c *Client) Export(ctx context.Context, id int64) (*ExportResult, error) {
	var out ExportResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/study/sessions/%d/export", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download returns the session rendered as Markdown.
func (c *Client) Download(ctx context.Context, id int64) ([]byte, error) {
	var out []byte
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/study/sessions/%d/download", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsAuthError reports whether err means the stored token is no longer usable.
func IsAuthError(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.StatusCode == http.StatusUnauthorized || (e.StatusCode == http.StatusForbidden && e.Message == "Invalid token"))
}
