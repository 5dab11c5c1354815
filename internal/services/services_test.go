package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/nexusd/internal/config"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

func TestBootstrap(t *testing.T) {
	registry, err := Bootstrap(config.Default(), nil, nil)
	require.NoError(t, err)

	assert.NotNil(t, registry.Config())
	assert.NotNil(t, registry.Scanner())
	assert.NotNil(t, registry.Limiter())
	assert.NotNil(t, registry.Safety())
	assert.NotNil(t, registry.Memories())
	assert.NotNil(t, registry.Ranker())
	assert.NotNil(t, registry.Trackers())
	assert.NotNil(t, registry.Provenance())
	assert.NotNil(t, registry.Router())

	// All five agents registered
	assert.Equal(t, []string{"insight", "memory", "orchestrator", "tracker", "ui"}, registry.Agents().IDs())
}

func TestBootstrapRequiresConfig(t *testing.T) {
	_, err := Bootstrap(nil, nil, nil)
	assert.Error(t, err)
}

func TestBootstrapEndToEnd(t *testing.T) {
	registry, err := Bootstrap(config.Default(), nil, nil)
	require.NoError(t, err)

	resp := registry.Router().Handle(context.Background(), &nexus.Request{
		ID:      "boot-1",
		Prompt:  "go to settings",
		Context: &nexus.Context{UserID: "u1"},
	})
	require.True(t, resp.Success, "warnings: %v", resp.Warnings)
	require.Len(t, resp.ActionDrafts, 1)
	assert.Equal(t, nexus.ActionNavigate, resp.ActionDrafts[0].Type)
}

func TestTrackerStoreCRUD(t *testing.T) {
	s := NewTrackerStore()

	created := s.Create("u1", "water", "Water Intake", map[string]any{"unit": "ml"})
	assert.Equal(t, "water", created.ID)
	assert.Equal(t, 1, s.Count("u1"))

	updated, err := s.Update("u1", "water", map[string]any{"goal": 2000})
	require.NoError(t, err)
	assert.Equal(t, 2000, updated.Data["goal"])
	assert.Equal(t, "ml", updated.Data["unit"])

	// Other users never see it
	_, err = s.Get("u2", "water")
	assert.ErrorIs(t, err, ErrTrackerNotFound)

	require.NoError(t, s.Delete("u1", "water"))
	assert.ErrorIs(t, s.Delete("u1", "water"), ErrTrackerNotFound)
	assert.Equal(t, 0, s.Count("u1"))
}

func TestTrackerStoreGeneratedID(t *testing.T) {
	s := NewTrackerStore()
	created := s.Create("u1", "", "Reading", nil)
	assert.NotEmpty(t, created.ID)
}

func TestDeleteHandlerRemovesTracker(t *testing.T) {
	registry, err := Bootstrap(config.Default(), nil, nil)
	require.NoError(t, err)

	trackers := registry.Trackers()
	trackers.Create("u1", "water", "Water Intake", nil)

	draft := nexus.ActionDraft{
		ID:          "d1",
		Type:        nexus.ActionDelete,
		Title:       "Delete tracker water",
		Payload:     map[string]any{"id": "water"},
		SourceAgent: "tracker",
	}

	applied, err := registry.Safety().Apply(context.Background(), draft, "u1")
	require.NoError(t, err)
	require.True(t, applied.NeedsConfirmation)

	action, err := registry.Safety().Confirm(context.Background(), applied.Token.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, nexus.ActionCompleted, action.Status)
	assert.Equal(t, 0, trackers.Count("u1"))
}
