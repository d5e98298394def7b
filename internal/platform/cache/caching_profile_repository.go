// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/auth/domain/entity"
	"portfolio_backend/internal/feature/profile/usecase"
)

// CachingProfileRepository decorates a ProfileRepository with Redis caching.
// Cached entries never carry the password hash or reset token fields.
type CachingProfileRepository struct {
	inner     usecase.ProfileRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ProfileRepository = (*CachingProfileRepository)(nil)

// NewCachingProfileRepository decorates a ProfileRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "profile".
func NewCachingProfileRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ProfileRepository, namespace string) *CachingProfileRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "profile"
	}
	return &CachingProfileRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindByID returns the profile, checking the cache first then falling back to the database.
func (c *CachingProfileRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.User
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	u, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(publicCopy(u)); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.Warn("profile cache write failed", "user_id", id, "error", err)
		}
	}
	return u, nil
}

// UpdateProfile saves the profile and drops its cache entry.
func (c *CachingProfileRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	if err := c.inner.UpdateProfile(ctx, u); err != nil {
		return err
	}
	c.Invalidate(ctx, u.ID)
	return nil
}

// Invalidate drops the cached profile of id. Failures are logged only.
func (c *CachingProfileRepository) Invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		slog.Warn("profile cache invalidation failed", "user_id", id, "error", err)
	}
}

func (c *CachingProfileRepository) cacheKey(id string) string {
	return fmt.Sprintf("%s:%s", c.namespace, id)
}

func publicCopy(u *entity.User) entity.User {
	out := *u
	out.PasswordHash = ""
	out.ResetTokenHash = nil
	out.ResetTokenExpiry = nil
	return out
}
