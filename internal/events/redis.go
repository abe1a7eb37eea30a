package events

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisBus carries change notifications over Redis pub/sub so that balance
// mutations in one console instance reach subscribers on every instance.
// Redis pub/sub is fire-and-forget, which matches the Bus contract.
type RedisBus struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisBus connects a Bus to the Redis instance at url
// (e.g. "redis://localhost:6379/0").
func NewRedisBus(url string, logger *slog.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBus{client: redis.NewClient(opts), logger: logger}, nil
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, topic, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string) (<-chan Message, func(), error) {
	ps := b.client.Subscribe(ctx, topic)
	// Force the subscription to be established before returning so callers
	// do not miss messages published immediately after Subscribe.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		for m := range ps.Channel() {
			out <- Message{Topic: m.Channel, Payload: []byte(m.Payload)}
		}
	}()

	cancel := func() {
		if err := ps.Close(); err != nil {
			b.logger.Warn("redis unsubscribe failed", "topic", topic, "error", err)
		}
	}
	return out, cancel, nil
}

// Close releases the underlying Redis connection.
func (b *RedisBus) Close() error {
	return b.client.Close()
}
