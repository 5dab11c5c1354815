package provenance

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/nexusd/internal/guard"
)

func TestBuilderLifecycle(t *testing.T) {
	tr := NewTracker(nil, nil)
	start := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return start }

	b := tr.Start("req-1", "router", "route")
	tr.now = func() time.Time { return start.Add(42 * time.Millisecond) }

	rec, err := b.Input("prompt: go to settings").Output("1 agent selected").Succeed().Build()
	require.NoError(t, err)

	assert.Equal(t, "req-1", rec.RequestID)
	assert.Equal(t, "router", rec.AgentID)
	assert.Equal(t, "route", rec.Operation)
	assert.Equal(t, 42*time.Millisecond, rec.Duration)
	assert.True(t, rec.Success)

	// Builders are single-use
	_, err = b.Build()
	assert.ErrorIs(t, err, ErrAlreadyBuilt)

	stored, err := tr.Store().Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
}

func TestBuilderFail(t *testing.T) {
	tr := NewTracker(nil, nil)

	rec, err := tr.Start("req-1", "tracker", "process").Fail(errors.New("timeout")).Build()
	require.NoError(t, err)
	assert.False(t, rec.Success)
	assert.Equal(t, "timeout", rec.Error)
}

func TestParentChildLinking(t *testing.T) {
	tr := NewTracker(nil, nil)

	root, err := tr.Start("req-1", "router", "route").Succeed().Build()
	require.NoError(t, err)

	childA, err := tr.Start("req-1", "ui", "process").WithParent(root.ID).Succeed().Build()
	require.NoError(t, err)
	childB, err := tr.Start("req-1", "tracker", "process").WithParent(root.ID).Succeed().Build()
	require.NoError(t, err)

	// Parent gained child links after the children built
	stored, err := tr.Store().Get(root.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{childA.ID, childB.ID}, stored.ChildIDs)

	chain, err := tr.Chain(root.ID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, root.ID, chain[0].ID)
	assert.Equal(t, childA.ID, chain[1].ID)
	assert.Equal(t, childB.ID, chain[2].ID)
}

func TestChainNested(t *testing.T) {
	tr := NewTracker(nil, nil)

	root, _ := tr.Start("req-1", "router", "route").Succeed().Build()
	mid, _ := tr.Start("req-1", "orchestrator", "process").WithParent(root.ID).Succeed().Build()
	leaf, _ := tr.Start("req-1", "memory", "recall").WithParent(mid.ID).Succeed().Build()

	chain, err := tr.Chain(root.ID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, leaf.ID, chain[2].ID)

	_, err = tr.Chain("missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSanitization(t *testing.T) {
	tr := NewTracker(nil, guard.MustNew(nil))

	rec, err := tr.Start("req-1", "tracker", "create").
		Input(`payload: api_key = "sk1234567890abcdef"`).
		Succeed().
		Build()
	require.NoError(t, err)

	assert.Contains(t, rec.Input, guard.RedactionString)
	assert.NotContains(t, rec.Input, "sk1234567890abcdef")
}

func TestSummaryCapKeepsValidUTF8(t *testing.T) {
	tr := NewTracker(nil, nil)

	// 3-byte runes so the cap lands mid-rune
	rec, err := tr.Start("req-1", "router", "route").
		Input(strings.Repeat("日", 1500)).
		Succeed().
		Build()
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(rec.Input))
	assert.True(t, strings.HasSuffix(rec.Input, "..."))
}

func TestQuery(t *testing.T) {
	tr := NewTracker(nil, nil)
	clock := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return clock }

	tr.Start("req-1", "ui", "process").Succeed().Build()
	clock = clock.Add(time.Second)
	tr.Start("req-1", "tracker", "process").Fail(errors.New("boom")).Build()
	clock = clock.Add(time.Second)
	tr.Start("req-2", "ui", "process").Succeed().Build()

	byRequest := tr.Store().ByRequest("req-1")
	require.Len(t, byRequest, 2)
	// Oldest first
	assert.Equal(t, "ui", byRequest[0].AgentID)

	byAgent := tr.Store().Query(Filter{AgentID: "ui"})
	assert.Len(t, byAgent, 2)

	failed := false
	bySuccess := tr.Store().Query(Filter{Success: &failed})
	require.Len(t, bySuccess, 1)
	assert.Equal(t, "tracker", bySuccess[0].AgentID)

	since := tr.Store().Query(Filter{Since: time.Date(2026, 8, 23, 12, 0, 1, 0, time.UTC)})
	assert.Len(t, since, 2)
}

func TestRecordsAreCopies(t *testing.T) {
	tr := NewTracker(nil, nil)

	rec, _ := tr.Start("req-1", "ui", "process").Succeed().Build()

	got, err := tr.Store().Get(rec.ID)
	require.NoError(t, err)
	got.Operation = "tampered"

	again, err := tr.Store().Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "process", again.Operation)
}
