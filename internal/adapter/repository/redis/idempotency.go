package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idempotency:"

// IdempotencyStore implements usecase.IdempotencyStore using Redis. It
// caches full HTTP responses at the transport edge; the posting engine's
// own idempotency record lives in Postgres.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// CheckAndSet returns the stored response when the key is already taken.
// With a nil response it instead reserves the key via SETNX, so only one
// of several concurrent requests with the same key proceeds.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := idempotencyPrefix + key

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	switch {
	case err == nil:
		return true, existing, nil
	case !errors.Is(err, redis.Nil):
		return false, nil, err
	}

	if response != nil {
		return false, nil, s.client.Set(ctx, fullKey, response, ttl).Err()
	}

	reserved, err := s.client.SetNX(ctx, fullKey, "processing", ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if reserved {
		return false, nil, nil
	}

	// Lost the race: surface whatever the winner has stored so far.
	existing, err = s.client.Get(ctx, fullKey).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, nil, err
	}
	return true, existing, nil
}

// Update replaces the reservation placeholder with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, idempotencyPrefix+key, response, ttl).Err()
}

// Release drops the reservation after a failed request so the client's
// retry is allowed to run instead of replaying the failure placeholder.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyPrefix+key).Err()
}
