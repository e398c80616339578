package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequestBody struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *OpenAICompleter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAICompleter(OpenAIConfig{
		APIKey:      "test-key",
		Model:       "test-model",
		BaseURL:     srv.URL + "/v1",
		Temperature: 0.6,
		Timeout:     2 * time.Second,
	}, logging.NewNop())
}

func completion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestOpenAICompleter_Success(t *testing.T) {
	var got chatRequestBody
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, completion("hello", "stop"))
	})

	temp := float32(0.5)
	out, err := c.Complete(context.Background(), Request{
		Artifact:    ArtifactFeedback,
		System:      "sys",
		Messages:    userMessage("hi"),
		MaxTokens:   250,
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 250, got.MaxTokens)
	assert.Equal(t, float32(0.5), got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[1].Content)
}

func TestOpenAICompleter_DefaultTemperature(t *testing.T) {
	var got chatRequestBody
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, completion("ok", "stop"))
	})

	_, err := c.Complete(context.Background(), Request{Artifact: ArtifactSummary, Messages: userMessage("hi"), MaxTokens: 200})
	require.NoError(t, err)
	assert.Equal(t, float32(0.6), got.Temperature)
}

func TestOpenAICompleter_UpstreamStatus(t *testing.T) {
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error": map[string]any{"message": "slow down", "type": "rate_limit", "code": "rate_limit_exceeded"},
		})
	})

	_, err := c.Complete(context.Background(), Request{Artifact: ArtifactQuiz, Messages: userMessage("hi")})
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, ue.HTTPStatus())
}

func TestOpenAICompleter_ContentFilter(t *testing.T) {
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, completion("", "content_filter"))
	})

	_, err := c.Complete(context.Background(), Request{Artifact: ArtifactSummary, Messages: userMessage("hi")})
	require.ErrorIs(t, err, common.ErrSafetyBlocked)
}

func TestOpenAICompleter_ContentFilterErrorCode(t *testing.T) {
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"message": "filtered", "type": "invalid_request_error", "code": "content_filter"},
		})
	})

	_, err := c.Complete(context.Background(), Request{Artifact: ArtifactSummary, Messages: userMessage("hi")})
	require.ErrorIs(t, err, common.ErrSafetyBlocked)
}

func TestOpenAICompleter_EmptyChoices(t *testing.T) {
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		resp := completion("", "stop")
		resp["choices"] = []any{}
		writeJSON(w, http.StatusOK, resp)
	})

	_, err := c.Complete(context.Background(), Request{Artifact: ArtifactFlashcards, Messages: userMessage("hi")})
	require.ErrorIs(t, err, common.ErrMalformedOutput)
}

func TestOpenAICompleter_Timeout(t *testing.T) {
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c.timeout = 50 * time.Millisecond

	_, err := c.Complete(context.Background(), Request{Artifact: ArtifactSummary, Messages: userMessage("hi")})
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, http.StatusGatewayTimeout, ue.StatusCode)
}

func TestOpenAICompleter_MissingKey(t *testing.T) {
	c := NewOpenAICompleter(OpenAIConfig{Model: "m"}, logging.NewNop())

	_, err := c.Complete(context.Background(), Request{Artifact: ArtifactSummary})
	require.ErrorIs(t, err, common.ErrMissingAPIKey)
}

func TestUpstreamError_HTTPStatus(t *testing.T) {
	assert.Equal(t, 500, (&UpstreamError{}).HTTPStatus())
	assert.Equal(t, 503, (&UpstreamError{StatusCode: 503}).HTTPStatus())
	assert.Equal(t, 500, (&UpstreamError{StatusCode: 200}).HTTPStatus())
}
