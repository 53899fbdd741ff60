package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces requests a fixed interval apart. It is owned by the
// Client (never process-global) and takes its clock by injection so tests can
// drive it without sleeping.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
	now      func() time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute requests.
// A non-positive rate disables limiting.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return newRateLimiter(requestsPerMinute, time.Now)
}

func newRateLimiter(requestsPerMinute int, now func() time.Time) *RateLimiter {
	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}
	return &RateLimiter{interval: interval, now: now}
}

// Reserve claims the next request slot and returns how long the caller must
// wait before using it.
func (l *RateLimiter) Reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.interval == 0 {
		return 0
	}

	now := l.now()
	if l.next.Before(now) {
		l.next = now
	}
	wait := l.next.Sub(now)
	l.next = l.next.Add(l.interval)
	return wait
}

// Wait blocks until the caller's reserved slot arrives or ctx expires.
func (l *RateLimiter) Wait(ctx context.Context) error {
	wait := l.Reserve()
	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
