package watch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

// DefaultInterval bounds how stale a snapshot can get without notifications.
const DefaultInterval = 3 * time.Second

// Lister loads the current list view for an owner.
type Lister interface {
	ListQuizSummaries(ctx context.Context, ownerID string) ([]model.QuizSummary, error)
}

// Watcher turns notifications and periodic refreshes into list snapshots.
type Watcher struct {
	lister   Lister
	notifier Notifier
	interval time.Duration
}

// NewWatcher creates a Watcher. A nil notifier means periodic refresh only.
func NewWatcher(lister Lister, notifier Notifier, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{lister: lister, notifier: notifier, interval: interval}
}

// Watch emits ownerID's current list at once and again whenever it changes.
// The channel is closed when ctx ends.
func (w *Watcher) Watch(ctx context.Context, ownerID string) (<-chan []model.QuizSummary, error) {
	current, err := w.lister.ListQuizSummaries(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}

	var (
		notify <-chan struct{}
		cancel = func() {}
	)
	if w.notifier != nil {
		notify, cancel, err = w.notifier.Subscribe(ctx, ownerID)
		if err != nil {
			slog.Warn("quiz change subscription failed, using periodic refresh", "owner", ownerID, "error", err)
			notify, cancel = nil, func() {}
		}
	}

	out := make(chan []model.QuizSummary, 1)
	out <- current

	go func() {
		defer close(out)
		defer cancel()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
			case <-ticker.C:
			}

			next, err := w.lister.ListQuizSummaries(ctx, ownerID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("refresh quiz list", "owner", ownerID, "error", err)
				continue
			}
			if sameSnapshot(current, next) {
				continue
			}
			current = next

			select {
			case out <- next:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func sameSnapshot(a, b []model.QuizSummary) bool {
	return slices.EqualFunc(a, b, func(x, y model.QuizSummary) bool {
		return x.ID == y.ID && x.Title == y.Title && x.QuestionCount == y.QuestionCount &&
			x.Difficulty == y.Difficulty && x.CreatedAt.Equal(y.CreatedAt)
	})
}
