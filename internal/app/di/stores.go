// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/auth/domain/entity"
	authuc "portfolio_backend/internal/feature/auth/usecase"
	profileuc "portfolio_backend/internal/feature/profile/usecase"
	"portfolio_backend/internal/platform/cache"
	"portfolio_backend/internal/platform/config"
	"portfolio_backend/internal/platform/http/ratelimit"
	"portfolio_backend/internal/platform/objectstorage/s3store"
	"portfolio_backend/internal/platform/session"
)

// ErrStorageNotConfigured is returned by file stores whose credentials are missing.
var ErrStorageNotConfigured = errors.New("object storage not configured")

// NewRevocationStore returns a Redis deny-list, or nil when Redis is unavailable.
// With nil, logged out tokens stay valid until they expire.
func NewRevocationStore(rdb *redis.Client) authuc.RevocationStore {
	if rdb == nil {
		slog.Warn("redis unavailable; logout will not revoke session tokens")
		return nil
	}
	return session.NewRevocationRedis(rdb, "session:revoked")
}

// NewRateLimiter returns a Redis-backed limiter shared across instances,
// or a process-local one when Redis is unavailable.
func NewRateLimiter(rdb *redis.Client) ratelimit.Limiter {
	if rdb == nil {
		return ratelimit.NewMemory()
	}
	return ratelimit.NewRedis(rdb, "portfolio:ratelimit:")
}

// NewProfileRepository wraps repo with a Redis cache. A nil client disables caching.
func NewProfileRepository(rdb *redis.Client, ttl time.Duration, repo profileuc.ProfileRepository) profileuc.ProfileRepository {
	return cache.NewCachingProfileRepository(rdb, ttl, repo, "profile")
}

// NewAvatarStore returns the S3 store for avatars.
func NewAvatarStore(ctx context.Context, cfg config.AvatarStorage) (authuc.FileStore, error) {
	return newObjectStore(ctx, "avatar", cfg.ObjectStore())
}

// NewResumeStore returns the store for resumes, a Supabase Storage bucket
// addressed through its S3-compatible endpoint.
func NewResumeStore(ctx context.Context, cfg config.ResumeStorage) (authuc.FileStore, error) {
	if cfg.SupabaseURL == "" {
		slog.Warn("SUPABASE_URL is not set; resume uploads will fail")
		return unconfiguredStore{name: "resume"}, nil
	}
	return newObjectStore(ctx, "resume", cfg.ObjectStore())
}

func newObjectStore(ctx context.Context, name string, cfg config.ObjectStore) (authuc.FileStore, error) {
	if !cfg.Configured() {
		slog.Warn("object storage credentials missing; uploads will fail", "store", name)
		return unconfiguredStore{name: name}, nil
	}
	return s3store.New(ctx, cfg)
}

type unconfiguredStore struct {
	name string
}

func (s unconfiguredStore) Upload(context.Context, entity.Upload) (entity.StoredFile, error) {
	return entity.StoredFile{}, errors.Join(ErrStorageNotConfigured, errors.New(s.name))
}

func (s unconfiguredStore) Delete(_ context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	return errors.Join(ErrStorageNotConfigured, errors.New(s.name))
}
