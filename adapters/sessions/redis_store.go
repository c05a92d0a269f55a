package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/garuda/ports"
)

// RedisStore is a Redis implementation of the SessionStore interface.
// TTL-bounded keys keep the valid set from growing without bound.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis session store
func NewRedisStore(client *redis.Client) ports.SessionStore {
	return &RedisStore{
		client: client,
		prefix: "garuda:session:",
	}
}

// Put records a session ID with expiration
func (s *RedisStore) Put(ctx context.Context, sessionID string, ttl time.Duration) error {
	key := s.prefix + sessionID

	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Exists checks whether a session ID is in the valid set
func (s *RedisStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	key := s.prefix + sessionID

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}

	return val > 0, nil
}

// Delete removes a session ID from the valid set
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key := s.prefix + sessionID

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
