// Package ratelimit limits requests per client over fixed windows.
package ratelimit

import (
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

// Limiter counts hits per key inside a fixed window.
type Limiter interface {
	Allow(key string, limit int, window time.Duration) Decision
	Close()
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

type memoryLimiter struct {
	mu      sync.Mutex
	entries map[string]state
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type state struct {
	count     int
	windowEnd time.Time
}

// NewMemory returns a process-local Limiter. Expired windows are swept periodically.
func NewMemory() Limiter {
	l := newMemory(time.Now)
	go l.sweepLoop()
	return l
}

func newMemory(now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		entries: make(map[string]state),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

func (l *memoryLimiter) Allow(key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.entries[key]
	if !ok || now.After(s.windowEnd) {
		s = state{count: 1, windowEnd: now.Add(window)}
		l.entries[key] = s
		return Decision{Allowed: true, Count: s.count, WindowEnd: s.windowEnd}
	}
	if s.count >= limit {
		return Decision{Allowed: false, Count: s.count, WindowEnd: s.windowEnd}
	}
	s.count++
	l.entries[key] = s
	return Decision{Allowed: true, Count: s.count, WindowEnd: s.windowEnd}
}

func (l *memoryLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(l.now())
		case <-l.stopCh:
			return
		}
	}
}

func (l *memoryLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, s := range l.entries {
		if now.After(s.windowEnd) {
			delete(l.entries, key)
		}
	}
}

func (l *memoryLimiter) Close() {
	l.once.Do(func() { close(l.stopCh) })
}
