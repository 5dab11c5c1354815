package http

import "github.com/fyrsmithlabs/nexusd/internal/nexus"

// AskRequest is the request body for POST /api/v1/ask.
type AskRequest struct {
	// RequestID is optional; a missing id gets a generated UUID.
	RequestID string `json:"requestId,omitempty"`

	Prompt      string          `json:"prompt"`
	UserID      string          `json:"userId,omitempty"`
	TargetAgent string          `json:"targetAgent,omitempty"`
	History     []nexus.Message `json:"history,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// ApplyActionRequest is the request body for POST /api/v1/actions/apply.
// Exactly one of Action or ConfirmationToken must be set: the first form
// submits a draft, the second confirms a previously issued token. Reject
// combines with the token form to discard the token instead.
type ApplyActionRequest struct {
	Action            *nexus.ActionDraft `json:"action,omitempty"`
	ConfirmationToken string             `json:"confirmationToken,omitempty"`
	Reject            bool               `json:"reject,omitempty"`
	UserID            string             `json:"userId"`
}

// ApplyActionResponse is the response body for POST /api/v1/actions/apply.
type ApplyActionResponse struct {
	NeedsConfirmation bool                     `json:"needsConfirmation"`
	Token             *nexus.ConfirmationToken `json:"token,omitempty"`
	Action            *nexus.NexusAction       `json:"action,omitempty"`
	Rejected          bool                     `json:"rejected,omitempty"`
}

// ProvenanceResponse is the response body for GET /api/v1/provenance/:requestId.
type ProvenanceResponse struct {
	RequestID string                   `json:"requestId"`
	Records   []nexus.ProvenanceRecord `json:"records"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string          `json:"status"`
	Agents map[string]bool `json:"agents,omitempty"`
}
