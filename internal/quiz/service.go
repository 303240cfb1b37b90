// Package quiz coordinates quiz creation from source text through storage.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhinav121122/intellect-quiz-app/internal/generator"
	"github.com/abhinav121122/intellect-quiz-app/internal/llm/prompts"
	"github.com/abhinav121122/intellect-quiz-app/internal/model"
	"github.com/abhinav121122/intellect-quiz-app/internal/watch"
)

// Store is the persistence the service needs.
type Store interface {
	SaveQuiz(ctx context.Context, q model.Quiz) (string, error)
	LoadQuiz(ctx context.Context, ownerID, id string) (*model.Quiz, error)
	ListQuizSummaries(ctx context.Context, ownerID string) ([]model.QuizSummary, error)
}

// CreateRequest is the user's input for a new quiz.
type CreateRequest struct {
	Title      string               `json:"title"`
	Text       string               `json:"text"`
	Parameters model.QuizParameters `json:"parameters"`
}

// Created is a stored quiz plus whether its questions are the fallback set.
type Created struct {
	Quiz     *model.Quiz
	Fallback bool
}

// Service creates, loads and lists quizzes.
type Service struct {
	store    Store
	gen      *generator.Service
	notifier watch.Notifier
}

// NewService creates a Service. notifier may be nil.
func NewService(store Store, gen *generator.Service, notifier watch.Notifier) *Service {
	return &Service{store: store, gen: gen, notifier: notifier}
}

// Validate checks req in the order the user is told about problems.
func (req CreateRequest) Validate() error {
	if strings.TrimSpace(req.Text) == "" {
		return &model.ValidationError{Field: "text", MessageID: "ErrTextRequired"}
	}
	if len(req.Parameters.QuestionTypes) == 0 {
		return &model.ValidationError{Field: "questionTypes", MessageID: "ErrQuestionTypesRequired"}
	}
	if strings.TrimSpace(req.Title) == "" {
		return &model.ValidationError{Field: "title", MessageID: "ErrTitleRequired"}
	}
	return req.Parameters.Normalize().Validate()
}

// Create generates questions for req and stores them under ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (Created, error) {
	if err := req.Validate(); err != nil {
		return Created{}, err
	}
	params := req.Parameters.Normalize()

	prompt, err := prompts.Build(req.Text, params)
	if err != nil {
		return Created{}, fmt.Errorf("build prompt: %w", err)
	}
	res := s.gen.Generate(ctx, prompt, params.NumberOfQuestions)

	q := model.Quiz{
		OwnerID:     ownerID,
		SourceTitle: req.Title,
		SourceText:  req.Text,
		Difficulty:  params.Difficulty,
		Questions:   res.Questions,
	}
	id, err := s.store.SaveQuiz(ctx, q)
	if err != nil {
		return Created{}, fmt.Errorf("save quiz: %w", err)
	}
	stored, err := s.store.LoadQuiz(ctx, ownerID, id)
	if err != nil {
		return Created{}, fmt.Errorf("reload quiz: %w", err)
	}
	slog.Info("created quiz", "id", id, "owner", ownerID, "questions", len(stored.Questions), "fallback", res.Fallback)

	s.publish(ctx, ownerID)
	return Created{Quiz: stored, Fallback: res.Fallback}, nil
}

func (s *Service) publish(ctx context.Context, ownerID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, ownerID); err != nil {
		slog.Warn("publish quiz change", "owner", ownerID, "error", err)
	}
}

// Get loads one of ownerID's quizzes.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*model.Quiz, error) {
	return s.store.LoadQuiz(ctx, ownerID, id)
}

// List returns ownerID's quiz summaries, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]model.QuizSummary, error) {
	return s.store.ListQuizSummaries(ctx, ownerID)
}

// GenerateFromPrompt runs a raw prompt through the generation pipeline.
// Only a missing prompt is an error; generation failures yield the fallback set.
func (s *Service) GenerateFromPrompt(ctx context.Context, prompt string) (generator.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return generator.Result{}, &model.ValidationError{Field: "prompt", MessageID: "ErrPromptRequired"}
	}
	return s.gen.Generate(ctx, prompt, 0), nil
}

// SuggestCount proposes a question count for text.
func (s *Service) SuggestCount(text string) int {
	return prompts.SuggestQuestionCount(text)
}
