package memory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// Errors for store operations.
var (
	ErrNotFound     = errors.New("memory item not found")
	ErrEmptyContent = errors.New("memory content cannot be empty")
	ErrEmptyUser    = errors.New("user id is required")
)

// Store is a user-scoped in-memory store of memory items. Ranking never
// deletes from it; removal only happens through Delete, which the
// action pipeline gates behind confirmation.
type Store struct {
	mu    sync.RWMutex
	items map[string]map[string]*nexus.MemoryItem // userID -> itemID -> item
	now   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		items: make(map[string]map[string]*nexus.MemoryItem),
		now:   time.Now,
	}
}

// Remember stores new content for a user and returns the created item.
func (s *Store) Remember(userID, content, category string, importance float64) (*nexus.MemoryItem, error) {
	if userID == "" {
		return nil, ErrEmptyUser
	}
	if content == "" {
		return nil, ErrEmptyContent
	}
	if importance < 0 {
		importance = 0
	}
	if importance > 1 {
		importance = 1
	}

	now := s.now()
	item := &nexus.MemoryItem{
		ID:             uuid.New().String(),
		UserID:         userID,
		Content:        content,
		Category:       category,
		Importance:     importance,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items[userID] == nil {
		s.items[userID] = make(map[string]*nexus.MemoryItem)
	}
	s.items[userID][item.ID] = item

	copied := *item
	return &copied, nil
}

// All returns copies of every item belonging to the user.
func (s *Store) All(userID string) []nexus.MemoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.items[userID]
	out := make([]nexus.MemoryItem, 0, len(user))
	for _, item := range user {
		out = append(out, *item)
	}
	return out
}

// Get returns a copy of one item.
func (s *Store) Get(userID, itemID string) (*nexus.MemoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[userID][itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	copied := *item
	return &copied, nil
}

// Touch records an access: bumps the access count and last-access time.
func (s *Store) Touch(userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[userID][itemID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	item.AccessCount++
	item.LastAccessedAt = s.now()
	return nil
}

// Delete removes one item. Callers must gate this behind the action
// confirmation pipeline.
func (s *Store) Delete(userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[userID][itemID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	delete(s.items[userID], itemID)
	return nil
}

// Count returns the number of items stored for a user.
func (s *Store) Count(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items[userID])
}
