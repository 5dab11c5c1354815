package guard

import "time"

// Result contains the scan result.
type Result struct {
	// Findings contains the detected violations (without matched values)
	Findings []Finding `json:"findings,omitempty"`

	// Duration is how long the scan took
	Duration time.Duration `json:"duration"`

	// TotalFindings is the count of matches
	TotalFindings int `json:"total_findings"`

	// ByRule maps rule IDs to finding counts
	ByRule map[string]int `json:"by_rule,omitempty"`
}

// Finding represents a detected violation.
type Finding struct {
	// RuleID identifies which rule matched
	RuleID string `json:"rule_id"`

	// Description explains what was found
	Description string `json:"description"`

	// Category groups the finding (credential, shell, sql)
	Category string `json:"category"`

	// Severity indicates the importance
	Severity string `json:"severity"`

	// Blocking marks findings that must reject the payload
	Blocking bool `json:"blocking"`

	// StartIndex is the start position in the scanned content
	StartIndex int `json:"start_index"`

	// EndIndex is the end position in the scanned content
	EndIndex int `json:"end_index"`

	// Line is the line number (1-indexed)
	Line int `json:"line,omitempty"`

	// The matched text is NOT included to avoid leaking credentials
}

// HasFindings returns true if anything matched.
func (r *Result) HasFindings() bool {
	return r.TotalFindings > 0
}

// HasBlocking returns true if any finding must reject the payload.
func (r *Result) HasBlocking() bool {
	for _, f := range r.Findings {
		if f.Blocking {
			return true
		}
	}
	return false
}

// ByCategory returns findings filtered by category.
func (r *Result) ByCategory(category string) []Finding {
	var filtered []Finding
	for _, f := range r.Findings {
		if f.Category == category {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// RuleIDs returns the unique rule IDs that matched.
func (r *Result) RuleIDs() []string {
	ids := make([]string, 0, len(r.ByRule))
	for id := range r.ByRule {
		ids = append(ids, id)
	}
	return ids
}

// Summary returns a brief summary of findings.
func (r *Result) Summary() string {
	if !r.HasFindings() {
		return "no blocked content detected"
	}
	if r.HasBlocking() {
		return "blocked content detected"
	}
	return "suspicious content detected"
}
