// Package ratelimit provides the sliding-window admission gate applied to
// inbound server messages.
//
// The limiter keeps the timestamps of recent acceptances. A call to
// TryAcquire first evicts timestamps older than the window, then accepts the
// call only while fewer than the configured maximum remain. Rejection is a
// flow-control outcome, not an error: rejected messages are dropped silently
// by the caller.
//
// The limiter is a single logical gate: all producers feeding one state
// machine must share one instance.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window rate limiter. The zero value is not usable;
// construct with New.
type Limiter struct {
	max    int
	window time.Duration

	mu     sync.Mutex
	stamps []time.Time

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// New creates a limiter admitting at most maxRequests acceptances within any
// rolling window.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		max:    maxRequests,
		window: window,
		stamps: make([]time.Time, 0, maxRequests),
		now:    time.Now,
	}
}

// TryAcquire reports whether the call is admitted. An admitted call is
// recorded against the window; a rejected call leaves the window untouched.
// Safe for concurrent use.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// Evict timestamps that fell out of the window. Stamps are appended in
	// call order, so the live region is a suffix.
	keep := 0
	for keep < len(l.stamps) && !l.stamps[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[keep:]...)
	}

	if len(l.stamps) >= l.max {
		return false
	}

	l.stamps = append(l.stamps, now)
	return true
}

// Len returns the number of acceptances currently inside the window.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	n := 0
	for _, ts := range l.stamps {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}
