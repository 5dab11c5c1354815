package nexus

import "time"

// ProvenanceRecord is an immutable audit node. Write-once; only the
// child linkage is appended after creation.
type ProvenanceRecord struct {
	ID        string        `json:"id"`
	RequestID string        `json:"request_id"`
	AgentID   string        `json:"agent_id"`
	Operation string        `json:"operation"`
	Input     string        `json:"input,omitempty"`
	Output    string        `json:"output,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	ParentID  string        `json:"parent_id,omitempty"`
	ChildIDs  []string      `json:"child_ids,omitempty"`
}
