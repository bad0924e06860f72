// Package ratelimit implements an in-memory fixed-window request counter
// keyed by client identifier.
//
// A client may send up to 2*limit-1 requests across a window boundary: the
// count resets entirely when a window expires instead of sliding.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default policy applied to every endpoint
const (
	DefaultLimit  = 100
	DefaultWindow = time.Minute

	DefaultSweepEvery = 100
)

// Result is the outcome of a single Check
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter owns the per-client window state. The zero value is not usable;
// construct one with New and share it for the lifetime of the process.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	sweeper *rate.Sometimes
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithSweep sets how often expired entries are evicted: on every Nth Check
// and/or at most once per interval, whichever comes first. Zero disables
// that trigger; both zero disables sweeping on Check entirely.
func WithSweep(every int, interval time.Duration) Option {
	return func(l *Limiter) {
		if every <= 0 && interval <= 0 {
			l.sweeper = nil
			return
		}
		l.sweeper = &rate.Sometimes{Every: max(every, 0), Interval: max(interval, 0)}
	}
}

// New creates a Limiter that sweeps expired entries every DefaultSweepEvery checks
func New(opts ...Option) *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
		sweeper: &rate.Sometimes{Every: DefaultSweepEvery},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records a request for identifier and reports whether it fits in the
// current window. A denied request does not consume quota. limit and window
// must be positive.
func (l *Limiter) Check(identifier string, limit int, window time.Duration) Result {
	if l.sweeper != nil {
		l.sweeper.Do(func() { l.Sweep() })
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[identifier]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		l.entries[identifier] = e
		return Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - 1,
			ResetAt:   e.resetAt,
		}
	}

	if e.count >= limit {
		return Result{
			Allowed:   false,
			Limit:     limit,
			Remaining: 0,
			ResetAt:   e.resetAt,
		}
	}

	e.count++
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - e.count,
		ResetAt:   e.resetAt,
	}
}

// Sweep removes every entry whose window has ended and returns how many
// were removed
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked identifiers, expired or not
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
