package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/nexusd/internal/config"
)

func newTestLimiter(global, user, agent int) (*Limiter, *time.Time) {
	l := New(config.RateLimitConfig{
		Window:      config.Duration(60 * time.Second),
		GlobalLimit: global,
		UserLimit:   user,
		AgentLimit:  agent,
	})
	clock := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestUserLimitExceeded(t *testing.T) {
	l, _ := newTestLimiter(1000, 3, 10)

	for i := 0; i < 3; i++ {
		d := l.Allow("user-1")
		require.True(t, d.Allowed, "request %d should pass", i+1)
	}

	d := l.Allow("user-1")
	require.False(t, d.Allowed)
	assert.Equal(t, ScopeUser, d.Scope)
	assert.Equal(t, 3, d.Limit)
	assert.Positive(t, d.RetryAfterMS())
	assert.Contains(t, d.Reason(), "user rate limit")

	// Other users are unaffected
	assert.True(t, l.Allow("user-2").Allowed)
}

func TestWindowReset(t *testing.T) {
	l, clock := newTestLimiter(1000, 2, 10)

	require.True(t, l.Allow("user-1").Allowed)
	require.True(t, l.Allow("user-1").Allowed)
	require.False(t, l.Allow("user-1").Allowed)

	// Advancing past the window makes the counter fresh again
	*clock = clock.Add(61 * time.Second)
	assert.True(t, l.Allow("user-1").Allowed)
}

func TestGlobalChecksBeforeUser(t *testing.T) {
	l, _ := newTestLimiter(2, 100, 10)

	require.True(t, l.Allow("a").Allowed)
	require.True(t, l.Allow("b").Allowed)

	d := l.Allow("c")
	require.False(t, d.Allowed)
	assert.Equal(t, ScopeGlobal, d.Scope)
}

func TestRefusalDoesNotRecord(t *testing.T) {
	l, clock := newTestLimiter(1000, 1, 10)

	require.True(t, l.Allow("user-1").Allowed)
	before := l.Len()

	// Refused requests must not consume capacity in any scope
	for i := 0; i < 5; i++ {
		require.False(t, l.Allow("user-1").Allowed)
	}
	assert.Equal(t, before, l.Len())

	*clock = clock.Add(61 * time.Second)
	assert.True(t, l.Allow("user-1").Allowed)
}

func TestAgentScope(t *testing.T) {
	l, _ := newTestLimiter(1000, 100, 2)

	require.True(t, l.AllowAgent("insight", 0).Allowed)
	require.True(t, l.AllowAgent("insight", 0).Allowed)

	d := l.AllowAgent("insight", 0)
	require.False(t, d.Allowed)
	assert.Equal(t, ScopeAgent, d.Scope)
	assert.Equal(t, 2, d.Limit)

	// Per-agent override beats the configured default
	assert.True(t, l.AllowAgent("tracker", 5).Allowed)
}

func TestUnlimitedScope(t *testing.T) {
	l, _ := newTestLimiter(0, 0, 0)
	l.cfg.AgentLimit = 0

	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("user-1").Allowed)
	}
}

func TestCleanup(t *testing.T) {
	l, clock := newTestLimiter(1000, 10, 10)

	l.Allow("user-1")
	l.Allow("user-2")
	l.AllowAgent("ui", 0)
	require.Equal(t, 4, l.Len()) // global + 2 users + 1 agent

	assert.Equal(t, 0, l.Cleanup())

	*clock = clock.Add(61 * time.Second)
	assert.Equal(t, 4, l.Cleanup())
	assert.Equal(t, 0, l.Len())
}

func TestBurstRefusalRate(t *testing.T) {
	l, _ := newTestLimiter(1000, 30, 120)

	refused := 0
	for i := 0; i < 100; i++ {
		d := l.Allow("user-1")
		if !d.Allowed {
			refused++
			assert.Positive(t, d.RetryAfterMS())
		}
	}
	assert.Equal(t, 70, refused)
}
