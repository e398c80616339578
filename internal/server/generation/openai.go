package generation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/logging"
	"github.com/sashabaranov/go-openai"
)

// Some OpenAI-compatible hosts reject filtered prompts with this error code
// instead of a content_filter finish reason.
const contentFilterCode = "content_filter"

// OpenAIConfig configures OpenAICompleter. BaseURL may point at any
// OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// OpenAICompleter sends chat completions through go-openai.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	log         logging.Logger
}

func NewOpenAICompleter(cfg OpenAIConfig, log logging.Logger) *OpenAICompleter {
	c := &OpenAICompleter{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		log:         log,
	}
	if c.timeout <= 0 {
		c.timeout = 60 * time.Second
	}

	if cfg.APIKey == "" {
		return c
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	// the per-call context carries the deadline
	clientConfig.HTTPClient = &http.Client{}

	c.client = openai.NewClientWithConfig(clientConfig)
	return c
}

// Complete runs one chat completion. A missing API key fails every call with
// common.ErrMissingAPIKey rather than failing startup.
func (c *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", common.ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := c.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	c.log.Debug(ctx, "model request",
		"model", c.model,
		"artifact", string(req.Artifact),
		"max_tokens", req.MaxTokens,
		"temperature", temperature,
	)

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", upstreamError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", malformed(req.Artifact, "empty response from model")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", common.ErrSafetyBlocked
	}

	c.log.Debug(ctx, "model response",
		"model", c.model,
		"artifact", string(req.Artifact),
		"finish_reason", string(choice.FinishReason),
		"total_tokens", resp.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return choice.Message.Content, nil
}

func upstreamError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &UpstreamError{StatusCode: http.StatusGatewayTimeout, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == contentFilterCode {
			return common.ErrSafetyBlocked
		}
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	return &UpstreamError{Err: err}
}
