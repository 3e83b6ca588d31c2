package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DedupeStore implements ports.DedupeStore using Redis SET NX. Each enqueue
// fingerprint is claimed at most once per TTL window.
type DedupeStore struct {
	client *goredis.Client
	prefix string
}

// NewDedupeStore creates a new Redis-backed dedupe store.
func NewDedupeStore(client *goredis.Client) *DedupeStore {
	return &DedupeStore{
		client: client,
		prefix: "outbox:dedupe:",
	}
}

// Acquire atomically claims the fingerprint for ttl. Returns true if this
// caller won the window, false if an identical enqueue already holds it.
func (s *DedupeStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetArgs(ctx, s.prefix+key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — a duplicate inside the window
			return false, nil
		}
		return false, fmt.Errorf("redis dedupe acquire: %w", err)
	}
	return result == "OK", nil
}
