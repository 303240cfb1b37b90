package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "intellect:quizzes:"

// Channel returns the pub/sub channel name for ownerID.
func Channel(ownerID string) string {
	return channelPrefix + ownerID
}

// RedisNotifier shares change notifications between service instances over
// Redis pub/sub.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier connects to the Redis server at url (redis://...).
func NewRedisNotifier(ctx context.Context, url string) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisNotifier{client: client}, nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

func (n *RedisNotifier) Publish(ctx context.Context, ownerID string) error {
	if err := n.client.Publish(ctx, Channel(ownerID), "changed").Err(); err != nil {
		return fmt.Errorf("publish quiz change: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error) {
	pubsub := n.client.Subscribe(ctx, Channel(ownerID))
	// Wait for the subscription confirmation so no Publish after return is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to quiz changes: %w", err)
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				slog.Warn("close redis subscription", "owner", ownerID, "error", err)
			}
		})
	}
	return out, cancel, nil
}
