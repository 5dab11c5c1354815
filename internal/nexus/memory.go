package nexus

import "time"

// MemoryItem is a user-scoped content unit. Relevance decays over time
// but items are never silently deleted by the ranking engine; deletion
// is an explicit, confirmed action.
type MemoryItem struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	Embedding      []float32 `json:"embedding,omitempty"`
	Importance     float64   `json:"importance"`
	AccessCount    int       `json:"access_count"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Category       string    `json:"category,omitempty"`
}
