package otp

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a per-key token bucket: a burst of requests, refilled at requests per window.
// A fresh key can get up to 2*requests-1 events through in its first window.
type Limiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	interval    time.Duration
	burst       int
	entries     map[string]*limiterEntry
	idleTTL     time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

// NewLimiter allows requests events per window for every key.
func NewLimiter(requests int, window time.Duration) *Limiter {
	interval := window / time.Duration(requests)
	return &Limiter{
		limit:       rate.Every(interval),
		interval:    interval,
		burst:       requests,
		entries:     make(map[string]*limiterEntry),
		idleTTL:     2 * window,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether key may make another request now.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) >= l.idleTTL {
		for k, entry := range l.entries {
			if now.Sub(entry.lastSeen) > l.idleTTL {
				delete(l.entries, k)
			}
		}
		l.lastCleanup = now
	}

	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// RetryAfter is the wait a rejected key should observe before retrying.
func (l *Limiter) RetryAfter() time.Duration {
	return l.interval
}
