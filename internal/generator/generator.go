package generator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/abhinav121122/intellect-quiz-app/internal/llm"
	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

// Result is the outcome of a generation run. Questions is never empty.
type Result struct {
	Questions []model.Question
	// Fallback is set when Questions is the fixed fallback set.
	Fallback bool
	// Cause is the absorbed failure when Fallback is set.
	Cause error
}

// Service turns prompts into questions and never fails.
type Service struct {
	gen llm.Generator
}

// New creates a generation service over gen.
func New(gen llm.Generator) *Service {
	return &Service{gen: gen}
}

// Generate sends prompt to the generator and normalizes the reply. Any
// failure is logged with its kind and replaced by Fallback().
// requestedCount is only compared against the result for diagnostics.
func (s *Service) Generate(ctx context.Context, prompt string, requestedCount int) Result {
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("quiz generation failed, using fallback questions",
			"kind", llm.Kind(err), "error", err)
		return Result{Questions: Fallback(), Fallback: true, Cause: err}
	}

	questions, err := Normalize(raw)
	if err != nil {
		slog.Warn("quiz generation returned unusable content, using fallback questions",
			"kind", "parse", "error", err)
		slog.Debug("unusable generation output", "raw", raw)
		return Result{Questions: Fallback(), Fallback: true, Cause: err}
	}

	for i, q := range questions {
		if err := q.Validate(); err != nil {
			slog.Warn("generated question does not match its type rules",
				"index", i, "type", q.Type, "error", err)
		}
	}
	if requestedCount > 0 && len(questions) != requestedCount {
		slog.Debug("generated question count differs from request",
			"requested", requestedCount, "got", len(questions))
	}
	slog.Info("generated quiz questions", "count", len(questions))
	return Result{Questions: questions}
}

// IsParseFailure reports whether r fell back because of unusable content.
func (r Result) IsParseFailure() bool {
	return r.Fallback && errors.Is(r.Cause, ErrParse)
}
