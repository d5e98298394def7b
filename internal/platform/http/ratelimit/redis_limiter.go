package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisLimiter struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedis returns a Limiter shared by every instance using client.
// Redis failures let the request through.
func NewRedis(client *redis.Client, prefix string) Limiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &redisLimiter{
		client:  client,
		prefix:  prefix,
		timeout: 250 * time.Millisecond,
	}
}

func (l *redisLimiter) Allow(key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	redisKey := l.prefix + key
	var incr *redis.IntCmd
	var pttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		// NX also repairs a counter that lost its expiry.
		pipe.ExpireNX(ctx, redisKey, window)
		pttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		slog.Error("redis rate limiter error", "op", "incr", "error", err)
		return Decision{Allowed: true}
	}
	counter := incr.Val()
	ttl := pttl.Val()
	if ttl <= 0 {
		ttl = window
	}
	return Decision{
		Allowed:   int(counter) <= limit,
		Count:     int(counter),
		WindowEnd: time.Now().Add(ttl),
	}
}

// Close is a no-op; the client is owned by the caller.
func (l *redisLimiter) Close() {}
