// Package ratelimiter paces outbound calls to third-party services.
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Waiter blocks until another call is allowed.
type Waiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter allows at most limit calls per interval. A caller over the limit
// reserves a slot in a later window and sleeps without holding the lock.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	interval time.Duration
	// windowStart may lie in the future once later windows are reserved.
	windowStart time.Time
	count       int
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a RateLimiter. A non-positive limit disables pacing.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		interval:    interval,
		windowStart: time.Now(),
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Wait takes a slot and sleeps until its window opens.
// It returns ctx.Err() if ctx ends first, giving the slot back.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limit <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now, start := rl.reserve()
	wait := start.Sub(now)
	if wait <= 0 {
		return nil
	}

	slog.Warn("outbound rate limit reached", "limit", rl.limit, "sleep", wait)
	if err := rl.sleep(ctx, wait); err != nil {
		rl.release(start)
		return err
	}
	return nil
}

func (rl *RateLimiter) reserve() (now, start time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now = rl.now()
	if now.Sub(rl.windowStart) >= rl.interval {
		rl.windowStart = now
		rl.count = 0
	}
	if rl.count >= rl.limit {
		rl.windowStart = rl.windowStart.Add(rl.interval)
		rl.count = 0
	}
	rl.count++
	return now, rl.windowStart
}

func (rl *RateLimiter) release(start time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.windowStart.Equal(start) && rl.count > 0 {
		rl.count--
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
