// Package ratelimit provides the per-submitter throttle applied to bid
// submissions. The limiter is an explicit dependency of the HTTP layer
// rather than hidden global state, so a multi-instance deployment can
// swap in an implementation backed by a shared store.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter decides whether a request identified by key (typically the
// client IP) may proceed.
type Limiter interface {
	Allow(key string) bool
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter allows at most limit requests per key per window.
// Counters reset when the window elapses.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*windowEntry

	now func() time.Time
}

// NewFixedWindowLimiter creates a limiter allowing limit requests per
// window for each key.
func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetAt) {
		l.entries[key] = &windowEntry{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	if entry.count >= l.limit {
		return false
	}
	entry.count++
	return true
}
