package ratelimit

import (
	"sync"
	"time"
)

// DefaultMinInterval is the minimum spacing between catalog requests.
const DefaultMinInterval = 5 * time.Second

// Decision is the outcome of an acquire attempt.
type Decision struct {
	Allowed bool
	// RetryAfter is the remaining wait when denied. Zero when allowed.
	RetryAfter time.Duration
}

// Interval grants at most one permit per window. It is shared by every
// query: it protects one upstream quota, not a per-key budget.
type Interval struct {
	mu        sync.Mutex
	name      string
	interval  time.Duration
	last      time.Time
	hasPermit bool
}

// NewInterval creates a limiter that spaces permits by at least interval.
func NewInterval(name string, interval time.Duration) *Interval {
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	return &Interval{name: name, interval: interval}
}

// TryAcquire grants a permit if at least the interval has elapsed since the
// last granted permit, recording now as the new permit time. Otherwise it
// reports how long is left. A denied attempt changes nothing.
func (l *Interval) TryAcquire(now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hasPermit {
		elapsed := now.Sub(l.last)
		if elapsed < l.interval {
			return Decision{Allowed: false, RetryAfter: l.interval - elapsed}
		}
	}

	// The timestamp only moves forward: a permit needs now >= last+interval.
	l.last = now
	l.hasPermit = true
	return Decision{Allowed: true}
}

// LastPermit returns the time of the last granted permit.
func (l *Interval) LastPermit() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.hasPermit
}

// Interval returns the configured minimum spacing.
func (l *Interval) Interval() time.Duration {
	return l.interval
}

// Name returns the name of this rate limiter.
func (l *Interval) Name() string {
	return l.name
}
