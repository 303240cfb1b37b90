package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini wraps the Google Gen AI client.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini API client. baseURL is optional.
func NewGemini(ctx context.Context, apiKey, modelName, baseURL string) (*Gemini, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: modelName}, nil
}

// Generate calls generateContent with the prompt as a single text part.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		TopK:            genai.Ptr[float32](topK),
		TopP:            genai.Ptr[float32](topP),
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", classifyGemini(err)
	}

	raw := result.Text()
	slog.Debug("Gemini response", "model", g.model, "raw", raw)
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: Gemini returned no text", ErrEmptyContent)
	}
	return raw, nil
}

func classifyGemini(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: HTTP %d: %w", ErrStatus, apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return fmt.Errorf("%w: HTTP %d: %w", ErrStatus, apiErrPtr.Code, err)
	}
	return fmt.Errorf("%w: %w", ErrRequest, err)
}
