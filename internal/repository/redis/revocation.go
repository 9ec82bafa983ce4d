// Package redis implements the Redis-backed stores.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "revoked_token:"

// RevocationStore records revoked bearer tokens until they would have
// expired anyway.
type RevocationStore struct {
	client *goredis.Client
}

// NewRevocationStore creates a new Redis-backed revocation store.
func NewRevocationStore(client *goredis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke stores the token for ttl. A non-positive ttl is a no-op.
func (s *RevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedTokenPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether token was revoked and has not yet expired.
func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := s.client.Get(ctx, revokedTokenPrefix+token).Err()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return true, nil
}
