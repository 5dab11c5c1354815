package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRememberAndRecall(t *testing.T) {
	s := NewStore()

	item, err := s.Remember("user-1", "prefers dark mode", "preference", 0.7)
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "user-1", item.UserID)
	assert.Equal(t, 0.7, item.Importance)

	got, err := s.Get("user-1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, "prefers dark mode", got.Content)

	// User scoping: another user cannot see it
	_, err = s.Get("user-2", item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.All("user-2"))
}

func TestRememberValidation(t *testing.T) {
	s := NewStore()

	_, err := s.Remember("", "content", "", 0.5)
	assert.ErrorIs(t, err, ErrEmptyUser)

	_, err = s.Remember("user-1", "", "", 0.5)
	assert.ErrorIs(t, err, ErrEmptyContent)

	// Importance clamps to [0,1]
	item, err := s.Remember("user-1", "x", "", 3.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, item.Importance)
}

func TestTouch(t *testing.T) {
	s := NewStore()
	start := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	item, err := s.Remember("user-1", "content", "", 0.5)
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(time.Hour) }
	require.NoError(t, s.Touch("user-1", item.ID))
	require.NoError(t, s.Touch("user-1", item.ID))

	got, err := s.Get("user-1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AccessCount)
	assert.Equal(t, start.Add(time.Hour), got.LastAccessedAt)

	assert.ErrorIs(t, s.Touch("user-1", "missing"), ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := NewStore()

	item, err := s.Remember("user-1", "content", "", 0.5)
	require.NoError(t, err)
	require.Equal(t, 1, s.Count("user-1"))

	require.NoError(t, s.Delete("user-1", item.ID))
	assert.Equal(t, 0, s.Count("user-1"))
	assert.ErrorIs(t, s.Delete("user-1", item.ID), ErrNotFound)
}
