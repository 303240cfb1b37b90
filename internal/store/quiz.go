package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

// SaveQuiz stores a new quiz and returns its generated ID. A zero CreatedAt
// is set to now. Any ID on q is ignored.
func (s *Store) SaveQuiz(ctx context.Context, q model.Quiz) (string, error) {
	if q.OwnerID == "" {
		return "", errors.New("save quiz: owner is required")
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	questions := q.Questions
	if questions == nil {
		questions = []model.Question{}
	}
	data, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("encode questions: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, owner_id, source_title, source_text, difficulty, questions_json, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, q.OwnerID, q.SourceTitle, q.SourceText, string(q.Difficulty), string(data), q.CreatedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert quiz: %w", err)
	}
	slog.Info("saved quiz", "id", id, "owner", q.OwnerID, "questions", len(questions))
	return id, nil
}

// LoadQuiz returns the quiz with the given ID on behalf of ownerID.
// It fails with model.ErrNotFound when no quiz exists and model.ErrForbidden
// when the quiz belongs to someone else.
func (s *Store) LoadQuiz(ctx context.Context, ownerID, id string) (*model.Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, source_title, source_text, difficulty, questions_json, created_at
		 FROM quizzes WHERE id = $1`, id)
	q, err := scanQuiz(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz %s: %w", id, err)
	}
	if q.OwnerID != ownerID {
		return nil, model.ErrForbidden
	}
	return q, nil
}

// ListQuizzes returns all quizzes owned by ownerID, newest first.
func (s *Store) ListQuizzes(ctx context.Context, ownerID string) ([]model.Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, source_title, source_text, difficulty, questions_json, created_at
		 FROM quizzes WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	quizzes := []model.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("list quizzes: %w", err)
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// ListQuizSummaries returns the list view of ownerID's quizzes, newest first.
func (s *Store) ListQuizSummaries(ctx context.Context, ownerID string) ([]model.QuizSummary, error) {
	quizzes, err := s.ListQuizzes(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return lo.Map(quizzes, func(q model.Quiz, _ int) model.QuizSummary {
		return model.Summarize(q)
	}), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(r rowScanner) (*model.Quiz, error) {
	var (
		q          model.Quiz
		difficulty string
		data       string
		created    int64
	)
	if err := r.Scan(&q.ID, &q.OwnerID, &q.SourceTitle, &q.SourceText, &difficulty, &data, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &q.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of %s: %w", q.ID, err)
	}
	q.Difficulty = model.Difficulty(difficulty)
	q.CreatedAt = time.Unix(0, created)
	return &q, nil
}
