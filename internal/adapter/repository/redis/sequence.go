package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SequenceProvider implements usecase.SequenceProvider on a Redis counter.
// INCR is atomic across connections, so two concurrent callers with the
// same key always observe distinct values.
type SequenceProvider struct {
	client *redis.Client
	prefix string
}

// NewSequenceProvider creates a new SequenceProvider.
func NewSequenceProvider(client *redis.Client) *SequenceProvider {
	return &SequenceProvider{
		client: client,
		prefix: "seq:",
	}
}

// Next returns the next value of the named counter. The expiry is applied
// on first use, so day-scoped counters clean up after themselves.
func (s *SequenceProvider) Next(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	fullKey := s.prefix + key

	value, err := s.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, err
	}

	if value == 1 && expiry > 0 {
		if err := s.client.Expire(ctx, fullKey, expiry).Err(); err != nil {
			return 0, err
		}
	}

	return value, nil
}
