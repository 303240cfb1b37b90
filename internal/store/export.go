package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

// ExportQuizzes builds an export of every quiz owned by ownerID, newest first.
func (s *Store) ExportQuizzes(ctx context.Context, ownerID string) (model.QuizExport, error) {
	user, err := s.GetUserByID(ctx, ownerID)
	if err != nil {
		return model.QuizExport{}, fmt.Errorf("get user %s: %w", ownerID, err)
	}
	if user == nil {
		return model.QuizExport{}, fmt.Errorf("user %s: %w", ownerID, model.ErrNotFound)
	}

	quizzes, err := s.ListQuizzes(ctx, ownerID)
	if err != nil {
		return model.QuizExport{}, err
	}

	items := make([]model.QuizExportItem, 0, len(quizzes))
	for _, q := range quizzes {
		items = append(items, model.QuizExportItem{
			Summary: model.Summarize(q),
			Quiz:    q,
		})
	}

	return model.QuizExport{
		OwnerID:    ownerID,
		Email:      user.Email,
		ExportedAt: time.Now().UTC(),
		NumQuizzes: len(items),
		Quizzes:    items,
	}, nil
}
