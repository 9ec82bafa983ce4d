package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const processedEventPrefix = "processed_event:"

// IdempotencyStore remembers processed event ids across consumer instances.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a store whose entries expire after ttl.
func NewIdempotencyStore(client *goredis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Contains(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, processedEventPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("check processed event: %w", err)
	}
	return n > 0, nil
}

func (s *IdempotencyStore) Add(ctx context.Context, eventID string) error {
	if err := s.client.Set(ctx, processedEventPrefix+eventID, "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}
