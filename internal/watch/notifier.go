// Package watch delivers live quiz-list snapshots to subscribers.
package watch

import (
	"context"
	"sync"
)

// Notifier signals that an owner's quiz set changed.
type Notifier interface {
	Publish(ctx context.Context, ownerID string) error
	// Subscribe returns a channel that receives a value after each Publish for
	// ownerID. Notifications may coalesce. cancel releases the subscription.
	Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error)
}

// Hub is an in-process Notifier.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Publish wakes every subscriber of ownerID without blocking.
func (h *Hub) Publish(_ context.Context, ownerID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[ownerID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribe(_ context.Context, ownerID string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[chan struct{}]struct{})
	}
	h.subs[ownerID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[ownerID], ch)
			if len(h.subs[ownerID]) == 0 {
				delete(h.subs, ownerID)
			}
		})
	}
	return ch, cancel, nil
}

// Subscribers returns the number of live subscriptions for ownerID.
func (h *Hub) Subscribers(ownerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ownerID])
}
