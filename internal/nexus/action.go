package nexus

import "time"

// ActionType names the kind of side effect an action performs.
type ActionType string

const (
	ActionNavigate ActionType = "navigate"
	ActionCreate   ActionType = "create"
	ActionUpdate   ActionType = "update"
	ActionDelete   ActionType = "delete"
	ActionPatch    ActionType = "patch"
	ActionExecute  ActionType = "execute"
)

// SafetyLevel grades an action's risk.
type SafetyLevel string

const (
	LevelSafe      SafetyLevel = "safe"
	LevelLowRisk   SafetyLevel = "low_risk"
	LevelMedium    SafetyLevel = "medium_risk"
	LevelHighRisk  SafetyLevel = "high_risk"
	LevelDangerous SafetyLevel = "dangerous"
)

// ActionDraft is a proposed, unexecuted mutation. A dangerous draft can
// never auto-execute; it only ever yields a review artifact.
type ActionDraft struct {
	ID                   string         `json:"id"`
	Type                 ActionType     `json:"type"`
	Title                string         `json:"title"`
	Description          string         `json:"description,omitempty"`
	Payload              map[string]any `json:"payload,omitempty"`
	SourceAgent          string         `json:"source_agent"`
	SafetyLevel          SafetyLevel    `json:"safety_level"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
	CreatedAt            time.Time      `json:"created_at"`
	ExpiresAt            time.Time      `json:"expires_at"`
}

// Expired reports whether the draft has passed its expiry at the given time.
func (d *ActionDraft) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}

// FieldChange is one before/after entry in a confirmation preview.
type FieldChange struct {
	Field  string `json:"field"`
	Before any    `json:"before,omitempty"`
	After  any    `json:"after,omitempty"`
}

// ActionPreview is the human-facing summary shown before confirmation.
type ActionPreview struct {
	Title      string        `json:"title"`
	Changes    []FieldChange `json:"changes,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	Impact     SafetyLevel   `json:"impact"`
	Reversible bool          `json:"reversible"`
}

// ConfirmationToken is an ephemeral, single-use binding between a draft,
// the requesting user, and a generated preview. Transitions to confirmed
// exactly once; discarded on expiry or rejection.
type ConfirmationToken struct {
	ID          string         `json:"id"`
	Action      ActionDraft    `json:"action"`
	UserID      string         `json:"user_id"`
	Preview     *ActionPreview `json:"preview,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Confirmed   bool           `json:"confirmed"`
	ConfirmedAt time.Time      `json:"confirmed_at,omitempty"`
}

// Expired reports whether the token has passed its TTL at the given time.
func (t *ConfirmationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// ActionStatus tracks a confirmed action through execution.
type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionConfirmed ActionStatus = "confirmed"
	ActionCompleted ActionStatus = "completed"
	ActionFailed    ActionStatus = "failed"
)

// NexusAction is a confirmed, executable action: a draft plus its
// confirming user and execution status.
type NexusAction struct {
	Draft       ActionDraft    `json:"draft"`
	ConfirmedBy string         `json:"confirmed_by"`
	ConfirmedAt time.Time      `json:"confirmed_at"`
	Status      ActionStatus   `json:"status"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}
