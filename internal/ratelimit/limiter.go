// Package ratelimit implements fixed-window request counters keyed by
// global, per-user, and per-agent scope.
//
// Scopes are checked in fixed order: global first, then user, then
// agent. A request passes only when every checked scope has remaining
// capacity; the first scope to refuse supplies the reported reason and
// the retry-after hint. Counters are recorded together only after the
// request is confirmed allowed. Windows reset lazily on read, so no
// background sweep is required, though Cleanup may reclaim memory for
// stale keys.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/fyrsmithlabs/nexusd/internal/config"
)

// Scope names used in refusal decisions and metrics.
const (
	ScopeGlobal = "global"
	ScopeUser   = "user"
	ScopeAgent  = "agent"
)

// Decision is the outcome of a rate check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool `json:"allowed"`

	// Scope names the first scope that refused, empty when allowed.
	Scope string `json:"scope,omitempty"`

	// Limit is the refusing scope's capacity per window.
	Limit int `json:"limit,omitempty"`

	// RetryAfter is the time until the refusing scope's window resets.
	RetryAfter time.Duration `json:"-"`
}

// RetryAfterMS returns the retry hint in milliseconds.
func (d Decision) RetryAfterMS() int64 {
	return d.RetryAfter.Milliseconds()
}

// Reason returns a human-readable refusal explanation.
func (d Decision) Reason() string {
	if d.Allowed {
		return ""
	}
	return fmt.Sprintf("%s rate limit of %d per window exceeded, retry in %dms", d.Scope, d.Limit, d.RetryAfterMS())
}

// window is one fixed-window counter. Replaced, not incremented, once
// its reset time has passed.
type window struct {
	count   int
	resetAt time.Time
}

// Limiter holds fixed-window counters for all scopes.
type Limiter struct {
	cfg config.RateLimitConfig

	mu      sync.Mutex
	windows map[string]*window

	now func() time.Time // injectable clock for tests
}

// New creates a limiter from config.
func New(cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		cfg:     cfg,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow checks the global and user scopes in order and, when both have
// capacity, records the request against both. The returned decision
// carries the first refusing scope and its retry hint.
func (l *Limiter) Allow(userID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if d := l.check(ScopeGlobal, ScopeGlobal, l.cfg.GlobalLimit, now); !d.Allowed {
		return d
	}
	if d := l.check(ScopeUser, ScopeUser+":"+userID, l.cfg.UserLimit, now); !d.Allowed {
		return d
	}

	l.record(ScopeGlobal, now)
	l.record(ScopeUser+":"+userID, now)
	return Decision{Allowed: true}
}

// AllowAgent checks and records the per-agent scope. A non-positive
// limit falls back to the configured agent default.
func (l *Limiter) AllowAgent(agentID string, limit int) Decision {
	if limit <= 0 {
		limit = l.cfg.AgentLimit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := ScopeAgent + ":" + agentID

	if d := l.check(ScopeAgent, key, limit, now); !d.Allowed {
		return d
	}

	l.record(key, now)
	return Decision{Allowed: true}
}

// check evaluates one scope without recording. Caller holds the lock.
func (l *Limiter) check(scope, key string, limit int, now time.Time) Decision {
	if limit <= 0 {
		// Unlimited scope
		return Decision{Allowed: true}
	}

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		// Fresh or expired window always has capacity
		return Decision{Allowed: true}
	}

	if w.count >= limit {
		return Decision{
			Allowed:    false,
			Scope:      scope,
			Limit:      limit,
			RetryAfter: w.resetAt.Sub(now),
		}
	}
	return Decision{Allowed: true}
}

// record increments one scope's counter, replacing expired windows.
// Caller holds the lock.
func (l *Limiter) record(key string, now time.Time) {
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{
			count:   1,
			resetAt: now.Add(l.cfg.Window.Duration()),
		}
		return
	}
	w.count++
}

// Cleanup removes expired windows to reclaim memory. Returns the number
// of keys removed.
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked windows, for observability.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
