// Package provenance builds an immutable, queryable audit record tree
// for every operation the orchestration core performs.
//
// Records are created through a builder that times the operation and
// accumulates sanitized input/output summaries. Build finalizes the
// duration, persists the record, and links it under its parent. Records
// are append-only once built; only the child linkage grows afterwards.
package provenance

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/nexusd/internal/guard"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// Errors for provenance operations.
var (
	ErrRecordNotFound = errors.New("provenance record not found")
	ErrAlreadyBuilt   = errors.New("provenance record already built")
)

// maxSummaryLen caps sanitized input/output summaries.
const maxSummaryLen = 2048

// Store persists provenance records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save persists a finalized record.
	Save(rec *nexus.ProvenanceRecord) error

	// Get returns a copy of one record.
	Get(id string) (*nexus.ProvenanceRecord, error)

	// AppendChild links a built record under its parent.
	AppendChild(parentID, childID string) error

	// ByRequest returns all records for a request, oldest first.
	ByRequest(requestID string) []nexus.ProvenanceRecord

	// Query returns records matching the filter, oldest first.
	Query(f Filter) []nexus.ProvenanceRecord
}

// Filter selects records for observability queries. Zero fields match
// everything.
type Filter struct {
	RequestID string
	AgentID   string
	Operation string
	Success   *bool
	Since     time.Time
	Until     time.Time
}

// MemoryStore is the default in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*nexus.ProvenanceRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*nexus.ProvenanceRecord)}
}

// Save persists a finalized record.
func (s *MemoryStore) Save(rec *nexus.ProvenanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *rec
	s.records[rec.ID] = &copied
	return nil
}

// Get returns a copy of one record.
func (s *MemoryStore) Get(id string) (*nexus.ProvenanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	copied := *rec
	copied.ChildIDs = append([]string(nil), rec.ChildIDs...)
	return &copied, nil
}

// AppendChild links a built record under its parent.
func (s *MemoryStore) AppendChild(parentID, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.records[parentID]
	if !ok {
		return fmt.Errorf("%w: parent %s", ErrRecordNotFound, parentID)
	}
	parent.ChildIDs = append(parent.ChildIDs, childID)
	return nil
}

// ByRequest returns all records for a request, oldest first.
func (s *MemoryStore) ByRequest(requestID string) []nexus.ProvenanceRecord {
	return s.Query(Filter{RequestID: requestID})
}

// Query returns records matching the filter, oldest first.
func (s *MemoryStore) Query(f Filter) []nexus.ProvenanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []nexus.ProvenanceRecord
	for _, rec := range s.records {
		if f.RequestID != "" && rec.RequestID != f.RequestID {
			continue
		}
		if f.AgentID != "" && rec.AgentID != f.AgentID {
			continue
		}
		if f.Operation != "" && rec.Operation != f.Operation {
			continue
		}
		if f.Success != nil && rec.Success != *f.Success {
			continue
		}
		if !f.Since.IsZero() && rec.Timestamp.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && rec.Timestamp.After(f.Until) {
			continue
		}
		copied := *rec
		copied.ChildIDs = append([]string(nil), rec.ChildIDs...)
		out = append(out, copied)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Tracker creates builders and reconstructs execution trees.
type Tracker struct {
	store   Store
	scanner guard.Scanner
	now     func() time.Time
}

// NewTracker creates a tracker. A nil scanner disables redaction.
func NewTracker(store Store, scanner guard.Scanner) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	if scanner == nil {
		scanner = &guard.NoopScanner{}
	}
	return &Tracker{store: store, scanner: scanner, now: time.Now}
}

// Store returns the underlying record store.
func (t *Tracker) Store() Store {
	return t.store
}

// Start begins a record and its timer.
func (t *Tracker) Start(requestID, agentID, operation string) *Builder {
	now := t.now()
	return &Builder{
		tracker: t,
		started: now,
		rec: nexus.ProvenanceRecord{
			ID:        uuid.New().String(),
			RequestID: requestID,
			AgentID:   agentID,
			Operation: operation,
			Timestamp: now,
		},
	}
}

// Chain reconstructs the full execution tree rooted at rootID in
// depth-first order, root first.
func (t *Tracker) Chain(rootID string) ([]nexus.ProvenanceRecord, error) {
	root, err := t.store.Get(rootID)
	if err != nil {
		return nil, err
	}

	chain := []nexus.ProvenanceRecord{*root}
	for _, childID := range root.ChildIDs {
		sub, err := t.Chain(childID)
		if err != nil {
			// A dangling child link is reported, not silently skipped
			return nil, fmt.Errorf("walking chain of %s: %w", rootID, err)
		}
		chain = append(chain, sub...)
	}
	return chain, nil
}

// Builder accumulates one record. Not safe for concurrent use; each
// operation gets its own builder.
type Builder struct {
	tracker  *Tracker
	rec      nexus.ProvenanceRecord
	started  time.Time
	parentID string
	built    bool
}

// ID returns the record id assigned at Start.
func (b *Builder) ID() string {
	return b.rec.ID
}

// WithParent links this record under a parent once built. If the
// parent has not been persisted yet, only the ParentID is recorded and
// the parent is expected to list this record via AddChild at its own
// build.
func (b *Builder) WithParent(parentID string) *Builder {
	b.parentID = parentID
	b.rec.ParentID = parentID
	return b
}

// AddChild records already-built children on this record. Used by the
// router, whose route record finishes after its agents' records.
func (b *Builder) AddChild(ids ...string) *Builder {
	b.rec.ChildIDs = append(b.rec.ChildIDs, ids...)
	return b
}

// Input records the sanitized input summary.
func (b *Builder) Input(summary string) *Builder {
	b.rec.Input = b.sanitize(summary)
	return b
}

// Output records the sanitized output summary.
func (b *Builder) Output(summary string) *Builder {
	b.rec.Output = b.sanitize(summary)
	return b
}

// Succeed marks the operation successful.
func (b *Builder) Succeed() *Builder {
	b.rec.Success = true
	b.rec.Error = ""
	return b
}

// Fail marks the operation failed with a reason.
func (b *Builder) Fail(err error) *Builder {
	b.rec.Success = false
	if err != nil {
		b.rec.Error = err.Error()
	}
	return b
}

// Build finalizes the duration, persists the record, and appends it to
// the parent's child list. A builder can only be built once.
func (b *Builder) Build() (*nexus.ProvenanceRecord, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true

	b.rec.Duration = b.tracker.now().Sub(b.started)
	if err := b.tracker.store.Save(&b.rec); err != nil {
		return nil, fmt.Errorf("persisting provenance record: %w", err)
	}
	if b.parentID != "" {
		if err := b.tracker.store.AppendChild(b.parentID, b.rec.ID); err != nil && !errors.Is(err, ErrRecordNotFound) {
			return nil, fmt.Errorf("linking provenance record: %w", err)
		}
	}

	copied := b.rec
	return &copied, nil
}

// sanitize redacts blocked patterns and caps summary length, backing
// up to a rune boundary so the summary stays valid UTF-8.
func (b *Builder) sanitize(s string) string {
	s = b.tracker.scanner.Redact(s)
	if len(s) > maxSummaryLen {
		cut := maxSummaryLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
