// Package ratelimit provides sliding-window admission control for named
// actions. Each key keeps a log of recent admission timestamps; a call is
// admitted only while fewer than maxRequests admissions fall inside the
// rolling window. Storing raw timestamps (rather than a decayed counter)
// bounds worst-case burst size exactly.
package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Limiter tracks admission timestamps per logical key.
type Limiter struct {
	mu          sync.Mutex
	log         map[string][]time.Time
	maxRequests int
	window      time.Duration
	clock       clockwork.Clock
}

// New creates a limiter admitting at most maxRequests per key within any
// rolling window.
func New(maxRequests int, window time.Duration, clock clockwork.Clock) *Limiter {
	return &Limiter{
		log:         make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
		clock:       clock,
	}
}

// Allow prunes the key's log to entries inside the window, then admits and
// records the call if a slot is free. Rejected calls are not recorded.
// The prune-check-append sequence runs as one critical section.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	entries := l.prune(key, now)

	if len(entries) >= l.maxRequests {
		l.log[key] = entries
		return false
	}

	l.log[key] = append(entries, now)
	return true
}

// RemainingWait returns how long until the oldest recorded admission falls
// out of the window and a slot opens. Zero if the key has no history.
func (l *Limiter) RemainingWait(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.log[key]
	if len(entries) == 0 {
		return 0
	}

	// Entries are appended in time order, so the oldest is first.
	wait := l.window - l.clock.Now().Sub(entries[0])
	if wait < 0 {
		return 0
	}
	return wait
}

// Reset drops the key entirely, re-admitting it immediately on the next call.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.log, key)
}

// Keys returns the number of keys currently tracked.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.log)
}

// prune removes entries older than the window. Must be called with mu held.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	entries := l.log[key]
	cutoff := now.Add(-l.window)

	i := 0
	for i < len(entries) && !entries[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return entries
	}
	if i == len(entries) {
		delete(l.log, key)
		return nil
	}
	return append([]time.Time(nil), entries[i:]...)
}
