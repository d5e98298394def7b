// Package session keeps server-side session state in Redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/auth/usecase"
)

// RevocationRedis deny-lists logged out token IDs until they expire.
type RevocationRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.RevocationStore = (*RevocationRedis)(nil)

// NewRevocationRedis creates a store writing keys under prefix.
func NewRevocationRedis(client *redis.Client, prefix string) *RevocationRedis {
	if prefix == "" {
		prefix = "session:revoked"
	}
	return &RevocationRedis{client: client, prefix: prefix}
}

// key returns the Redis key for a token ID.
func (r *RevocationRedis) key(tokenID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, tokenID)
}

// Revoke marks tokenID revoked for ttl. Redis drops the key when the token would have expired anyway.
func (r *RevocationRedis) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (r *RevocationRedis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, r.key(tokenID)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("check revocation: %w", err)
	}
}
