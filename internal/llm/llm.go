package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrGenerationFailed is wrapped by every generation error.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrRequest means the endpoint could not be reached.
	ErrRequest = fmt.Errorf("%w: request", ErrGenerationFailed)
	// ErrStatus means the endpoint answered with a non-success status.
	ErrStatus = fmt.Errorf("%w: status", ErrGenerationFailed)
	// ErrEmptyContent means the endpoint answered without generated text.
	ErrEmptyContent = fmt.Errorf("%w: empty content", ErrGenerationFailed)
)

// Generator sends a prompt to a text generation endpoint and returns the raw text.
// Implementations do not retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Sampling settings shared by both providers.
const (
	temperature     = 0.7
	topP            = 0.95
	topK            = 40
	maxOutputTokens = 2048
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping checks that the endpoint is reachable and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Generate sends prompt as a single user message.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: LLM returned no choices", ErrEmptyContent)
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "model", c.model, "raw", raw)
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: LLM returned blank text", ErrEmptyContent)
	}
	return raw, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: HTTP %d: %w", ErrStatus, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: HTTP %d: %w", ErrStatus, reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("%w: %w", ErrRequest, err)
}

// Kind names the failure class of err for logging.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrRequest):
		return "request"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrEmptyContent):
		return "empty"
	case errors.Is(err, ErrGenerationFailed):
		return "generation"
	default:
		return "unknown"
	}
}

// MaskKey returns a printable form of an API key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 8)
}
