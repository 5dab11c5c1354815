package nexus

import "time"

// SafetyTier classifies a request's risk, inferred from destructive-verb
// patterns in the prompt or caller metadata.
type SafetyTier int

const (
	// TierLow marks read-only or navigation requests.
	TierLow SafetyTier = 1

	// TierDefault is the baseline for unclassified requests.
	TierDefault SafetyTier = 2

	// TierHigh marks requests with destructive intent.
	TierHigh SafetyTier = 3
)

// Valid reports whether the tier is one of the defined values.
func (t SafetyTier) Valid() bool {
	return t >= TierLow && t <= TierHigh
}

// Context is a derived, per-request snapshot. Built fresh for every
// request and never persisted.
type Context struct {
	// UserID identifies the requesting user.
	UserID string `json:"user_id"`

	// UILocation is the caller's current screen or route.
	UILocation string `json:"ui_location,omitempty"`

	// Memories holds the ranked relevant memory subset.
	Memories []MemoryItem `json:"memories,omitempty"`

	// SessionCounters holds per-session counters (requests, actions).
	SessionCounters map[string]int `json:"session_counters,omitempty"`

	// FeatureFlags holds enabled feature toggles.
	FeatureFlags map[string]bool `json:"feature_flags,omitempty"`

	// SafetyTier is the computed risk tier for this request.
	SafetyTier SafetyTier `json:"safety_tier"`

	// BuiltAt records when the snapshot was assembled.
	BuiltAt time.Time `json:"built_at"`
}

// Merge overlays caller-supplied partial context onto a built snapshot.
// Caller values win for identity and location; computed fields (memories,
// safety tier) are preserved.
func (c *Context) Merge(partial *Context) {
	if partial == nil {
		return
	}
	if partial.UserID != "" {
		c.UserID = partial.UserID
	}
	if partial.UILocation != "" {
		c.UILocation = partial.UILocation
	}
	for k, v := range partial.SessionCounters {
		if c.SessionCounters == nil {
			c.SessionCounters = make(map[string]int)
		}
		c.SessionCounters[k] = v
	}
	for k, v := range partial.FeatureFlags {
		if c.FeatureFlags == nil {
			c.FeatureFlags = make(map[string]bool)
		}
		c.FeatureFlags[k] = v
	}
}
