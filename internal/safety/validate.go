package safety

import (
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/nexusd/internal/guard"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// requiredFields maps each action type to the payload keys it must carry.
var requiredFields = map[nexus.ActionType][]string{
	nexus.ActionNavigate: {"path"},
	nexus.ActionCreate:   {"data"},
	nexus.ActionUpdate:   {"id", "data"},
	nexus.ActionDelete:   {"id"},
	nexus.ActionPatch:    {"patch"},
	nexus.ActionExecute:  {"command"},
}

// ValidationResult reports the outcome of validating one draft.
// Warnings carry non-blocking guard matches; the draft stays valid.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Errors   []string        `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Findings []guard.Finding `json:"findings,omitempty"`
}

// validator checks draft payloads for shape, size, and blocked content.
type validator struct {
	scanner         guard.Scanner
	maxPayloadBytes int
}

// Validate checks required fields per type, enforces the payload size
// cap, and scans the serialized payload for blocked patterns. A blocking
// guard match makes the draft invalid: an invalid draft can never be
// executed, confirmed, or converted into a token. Non-blocking matches
// are surfaced as warnings without rejecting the draft.
func (v *validator) Validate(draft *nexus.ActionDraft) ValidationResult {
	result := ValidationResult{Valid: true}

	fields, known := requiredFields[draft.Type]
	if !known {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("unknown action type %q", draft.Type))
		return result
	}

	for _, f := range fields {
		val, ok := draft.Payload[f]
		if !ok || val == nil || val == "" {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s action requires payload field %q", draft.Type, f))
		}
	}

	serialized, err := json.Marshal(draft.Payload)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("payload is not serializable: %v", err))
		return result
	}

	if v.maxPayloadBytes > 0 && len(serialized) > v.maxPayloadBytes {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("payload size %d exceeds maximum %d bytes", len(serialized), v.maxPayloadBytes))
	}

	// Scan both the serialized payload and the title/description text.
	scanned := string(serialized) + "\n" + draft.Title + "\n" + draft.Description
	if scan := v.scanner.Scan(scanned); scan.HasFindings() {
		result.Findings = scan.Findings
		for _, f := range scan.Findings {
			if !f.Blocking {
				result.Warnings = append(result.Warnings, fmt.Sprintf("flagged content: %s (%s)", f.Description, f.RuleID))
				continue
			}
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("blocked content: %s (%s)", f.Description, f.RuleID))
		}
	}

	return result
}
