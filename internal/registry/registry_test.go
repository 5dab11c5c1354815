package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// stubAgent is a minimal agent for registry tests.
type stubAgent struct {
	cfg     nexus.AgentConfig
	healthy bool
}

func (s *stubAgent) Config() nexus.AgentConfig { return s.cfg }

func (s *stubAgent) Process(ctx context.Context, req *nexus.Request, reqCtx *nexus.Context) (*nexus.AgentResult, error) {
	return &nexus.AgentResult{AgentID: s.cfg.ID, Success: true}, nil
}

func (s *stubAgent) CanHandle(req *nexus.Request) bool { return true }

func (s *stubAgent) HealthCheck(ctx context.Context) bool { return s.healthy }

func newStub(id string, caps ...string) *stubAgent {
	if len(caps) == 0 {
		caps = []string{"general"}
	}
	return &stubAgent{
		cfg: nexus.AgentConfig{
			ID:           id,
			Name:         id,
			Capabilities: caps,
			RateLimit:    60,
			Timeout:      5 * time.Second,
		},
		healthy: true,
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := New(nil)
	agent := newStub("ui", "navigation")
	require.NoError(t, r.Register(agent))

	got, err := r.Get("ui")
	require.NoError(t, err)
	// Same instance, not a copy
	assert.Same(t, agent, got)

	assert.True(t, r.Has("ui"))
	assert.False(t, r.Has("ghost"))

	_, err = r.Get("ghost")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestRegisterValidation(t *testing.T) {
	r := New(nil)
	assert.ErrorIs(t, r.Register(nil), ErrNilAgent)

	bad := &stubAgent{cfg: nexus.AgentConfig{ID: "", Name: "x"}}
	assert.Error(t, r.Register(bad))
}

func TestRegisterOverwrite(t *testing.T) {
	r := New(nil)
	first := newStub("tracker")
	second := newStub("tracker")

	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))

	got, err := r.Get("tracker")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Len())
}

func TestIDsNoDuplicates(t *testing.T) {
	r := New(nil)
	// Repeated initialization must not duplicate ids
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Register(newStub("ui")))
		require.NoError(t, r.Register(newStub("tracker")))
	}

	ids := r.IDs()
	assert.Equal(t, []string{"tracker", "ui"}, ids)
}

func TestFindByCapability(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Register(newStub("ui", "navigation")))
	require.NoError(t, r.Register(newStub("tracker", "crud", "insight")))
	require.NoError(t, r.Register(newStub("insight", "insight")))

	matched := r.FindByCapability("insight")
	require.Len(t, matched, 2)
	assert.Equal(t, "insight", matched[0].Config().ID)
	assert.Equal(t, "tracker", matched[1].Config().ID)

	assert.Empty(t, r.FindByCapability("unknown"))
}

func TestEnableDisable(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Register(newStub("ui", "navigation")))

	assert.True(t, r.IsEnabled("ui"))
	require.NoError(t, r.SetEnabled("ui", false))
	assert.False(t, r.IsEnabled("ui"))

	// Disabled agents are excluded from capability discovery but stay registered
	assert.Empty(t, r.FindByCapability("navigation"))
	assert.True(t, r.Has("ui"))

	assert.ErrorIs(t, r.SetEnabled("ghost", true), ErrAgentNotFound)
}

func TestHealthCheckAll(t *testing.T) {
	r := New(nil)
	healthy := newStub("ui")
	sick := newStub("tracker")
	sick.healthy = false

	require.NoError(t, r.Register(healthy))
	require.NoError(t, r.Register(sick))

	results := r.HealthCheckAll(context.Background())
	assert.True(t, results["ui"])
	assert.False(t, results["tracker"])

	assert.True(t, r.IsHealthy("ui"))
	assert.False(t, r.IsHealthy("tracker"))
	// Failing a health check does not unregister
	assert.True(t, r.Has("tracker"))
}
