package nexus

import "time"

// InsightType classifies a structured finding.
type InsightType string

const (
	InsightTrend        InsightType = "trend"
	InsightAnomaly      InsightType = "anomaly"
	InsightCorrelation  InsightType = "correlation"
	InsightPrediction   InsightType = "prediction"
	InsightOptimization InsightType = "optimization"
	InsightRisk         InsightType = "risk"
	InsightOpportunity  InsightType = "opportunity"
	InsightReminder     InsightType = "reminder"
)

// InsightSeverity grades a finding's urgency.
type InsightSeverity string

const (
	SeverityInfo     InsightSeverity = "info"
	SeveritySuccess  InsightSeverity = "success"
	SeverityWarning  InsightSeverity = "warning"
	SeverityCritical InsightSeverity = "critical"
)

// Insight is a structured, agent-produced observation about user data,
// distinct from an action.
type Insight struct {
	ID          string          `json:"id"`
	Type        InsightType     `json:"type"`
	Severity    InsightSeverity `json:"severity"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Confidence  float64         `json:"confidence"`
	SourceAgent string          `json:"source_agent"`
	Data        map[string]any  `json:"data,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
