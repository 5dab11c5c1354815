package nexus

// Response is the synthesized outbound result of one request. Blocked
// action drafts are never included; they surface only as review artifacts.
type Response struct {
	RequestID    string             `json:"request_id"`
	Success      bool               `json:"success"`
	Answer       string             `json:"answer"`
	Insights     []Insight          `json:"insights,omitempty"`
	ActionDrafts []ActionDraft      `json:"action_drafts,omitempty"`
	AgentsUsed   []string           `json:"agents_used,omitempty"`
	Provenance   []ProvenanceRecord `json:"provenance,omitempty"`
	Confidence   float64            `json:"confidence"`
	ProcessingMS int64              `json:"processing_time_ms"`
	Warnings     []string           `json:"warnings,omitempty"`
}
