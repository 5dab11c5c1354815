package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTrackerNotFound is returned for operations on an unknown tracker id.
var ErrTrackerNotFound = errors.New("tracker not found")

// Tracker is one user-owned tracked collection.
type Tracker struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TrackerStore holds trackers per user. It backs the action handlers:
// every mutation arrives through the safety pipeline, never directly.
type TrackerStore struct {
	mu       sync.RWMutex
	trackers map[string]map[string]*Tracker
	now      func() time.Time
}

// NewTrackerStore creates an empty store.
func NewTrackerStore() *TrackerStore {
	return &TrackerStore{
		trackers: make(map[string]map[string]*Tracker),
		now:      time.Now,
	}
}

// Create adds a tracker for the user and returns it. A missing id gets
// a generated one.
func (s *TrackerStore) Create(userID, id, name string, data map[string]any) *Tracker {
	if id == "" {
		id = uuid.New().String()
	}
	now := s.now()
	t := &Tracker{
		ID:        id,
		Name:      name,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trackers[userID] == nil {
		s.trackers[userID] = make(map[string]*Tracker)
	}
	s.trackers[userID][id] = t
	return copyTracker(t)
}

// Update merges data into an existing tracker.
func (s *TrackerStore) Update(userID, id string, data map[string]any) (*Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trackers[userID][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTrackerNotFound, id)
	}
	if t.Data == nil {
		t.Data = make(map[string]any, len(data))
	}
	for k, v := range data {
		t.Data[k] = v
	}
	if name, ok := data["name"].(string); ok && name != "" {
		t.Name = name
	}
	t.UpdatedAt = s.now()
	return copyTracker(t), nil
}

// Delete removes a tracker permanently.
func (s *TrackerStore) Delete(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trackers[userID][id]; !ok {
		return fmt.Errorf("%w: %s", ErrTrackerNotFound, id)
	}
	delete(s.trackers[userID], id)
	return nil
}

// Get returns one tracker.
func (s *TrackerStore) Get(userID, id string) (*Tracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trackers[userID][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTrackerNotFound, id)
	}
	return copyTracker(t), nil
}

// List returns all of a user's trackers.
func (s *TrackerStore) List(userID string) []*Tracker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Tracker, 0, len(s.trackers[userID]))
	for _, t := range s.trackers[userID] {
		out = append(out, copyTracker(t))
	}
	return out
}

// Count returns the number of trackers for a user.
func (s *TrackerStore) Count(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trackers[userID])
}

func copyTracker(t *Tracker) *Tracker {
	dup := *t
	if t.Data != nil {
		dup.Data = make(map[string]any, len(t.Data))
		for k, v := range t.Data {
			dup.Data[k] = v
		}
	}
	return &dup
}
