package safety

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// tokenEntry pairs a token with the action it produced on confirmation.
// The executed action is retained until the token's TTL passes so that
// a repeated confirm stays idempotent.
type tokenEntry struct {
	token  *nexus.ConfirmationToken
	action *nexus.NexusAction
}

// TokenStore holds pending confirmation tokens. Expiry is passive: it
// is a pure function of wall-clock time at lookup, never a timer.
type TokenStore struct {
	mu      sync.Mutex
	entries map[string]*tokenEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenStore creates a store with the given token TTL.
func NewTokenStore(ttl time.Duration) *TokenStore {
	return &TokenStore{
		entries: make(map[string]*tokenEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue creates a token binding the draft to the requesting user, with
// a generated preview and a fixed TTL.
func (s *TokenStore) Issue(draft nexus.ActionDraft, userID string, preview *nexus.ActionPreview) *nexus.ConfirmationToken {
	now := s.now()
	token := &nexus.ConfirmationToken{
		ID:        uuid.New().String(),
		Action:    draft,
		UserID:    userID,
		Preview:   preview,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.entries[token.ID] = &tokenEntry{token: token}
	s.mu.Unlock()

	return token
}

// Confirm transitions a token to confirmed exactly once and returns the
// bound action. A second confirm on the same token returns the already
// confirmed action without creating a second execution. Expired tokens
// are treated as not found; a mismatched owner fails explicitly.
func (s *TokenStore) Confirm(tokenID, userID string) (*nexus.NexusAction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[tokenID]
	if !ok {
		return nil, false, nexus.ErrTokenNotFound
	}

	now := s.now()
	if e.token.Expired(now) {
		delete(s.entries, tokenID)
		return nil, false, nexus.ErrTokenNotFound
	}

	if e.token.UserID != userID {
		return nil, false, nexus.ErrTokenOwnerMismatch
	}

	if e.token.Confirmed {
		// Idempotent repeat: hand back the recorded action
		return e.action, true, nil
	}

	e.token.Confirmed = true
	e.token.ConfirmedAt = now
	e.action = &nexus.NexusAction{
		Draft:       e.token.Action,
		ConfirmedBy: userID,
		ConfirmedAt: now,
		Status:      nexus.ActionConfirmed,
	}
	return e.action, false, nil
}

// Reject discards a pending token without executing its action. The
// entry is deleted immediately, so a later confirm reports not found.
// Expired tokens are treated as not found; a mismatched owner fails
// without consuming the token; an already confirmed token cannot be
// rejected.
func (s *TokenStore) Reject(tokenID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[tokenID]
	if !ok {
		return nexus.ErrTokenNotFound
	}
	if e.token.Expired(s.now()) {
		delete(s.entries, tokenID)
		return nexus.ErrTokenNotFound
	}
	if e.token.UserID != userID {
		return nexus.ErrTokenOwnerMismatch
	}
	if e.token.Confirmed {
		return nexus.ErrTokenConfirmed
	}

	delete(s.entries, tokenID)
	return nil
}

// RecordOutcome stores the execution outcome on a confirmed token so
// idempotent repeats observe the same result.
func (s *TokenStore) RecordOutcome(tokenID string, action *nexus.NexusAction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[tokenID]; ok && e.token.Confirmed {
		e.action = action
	}
}

// Cleanup removes expired tokens. Returns the number removed.
func (s *TokenStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if e.token.Expired(now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live tokens, for observability.
func (s *TokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// buildPreview generates the human-facing summary shown before
// confirmation: title, per-field before/after changes, warnings, impact
// tier, and reversibility.
func buildPreview(draft nexus.ActionDraft) *nexus.ActionPreview {
	p := PolicyFor(draft.Type)

	preview := &nexus.ActionPreview{
		Title:      draft.Title,
		Impact:     p.Level,
		Reversible: p.Reversible,
	}

	// Before/after maps in the payload become field-level change rows;
	// otherwise each payload field is shown as a plain after-value.
	before, _ := draft.Payload["before"].(map[string]any)
	after, _ := draft.Payload["after"].(map[string]any)
	switch {
	case after != nil:
		keys := make([]string, 0, len(after))
		for k := range after {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			var prev any
			if before != nil {
				prev = before[k]
			}
			preview.Changes = append(preview.Changes, nexus.FieldChange{Field: k, Before: prev, After: after[k]})
		}
	default:
		keys := make([]string, 0, len(draft.Payload))
		for k := range draft.Payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			preview.Changes = append(preview.Changes, nexus.FieldChange{Field: k, After: draft.Payload[k]})
		}
	}

	if !p.Reversible {
		preview.Warnings = append(preview.Warnings, "this action cannot be undone")
	}
	if p.Blocked {
		preview.Warnings = append(preview.Warnings, "this action type only produces a review artifact and is never applied directly")
	}
	if draft.Type == nexus.ActionDelete {
		if id, ok := draft.Payload["id"].(string); ok {
			preview.Warnings = append(preview.Warnings, fmt.Sprintf("permanently deletes %s", id))
		}
	}

	return preview
}
