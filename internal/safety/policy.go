package safety

import "github.com/fyrsmithlabs/nexusd/internal/nexus"

// Disposition is the outcome of classifying a draft.
type Disposition string

const (
	// DispositionAuto marks drafts that may execute without confirmation.
	DispositionAuto Disposition = "auto"

	// DispositionConfirm marks drafts that need a confirmation token.
	DispositionConfirm Disposition = "needs_confirmation"

	// DispositionBlocked marks drafts that can only yield review artifacts.
	DispositionBlocked Disposition = "blocked"
)

// Policy is one row of the static safety policy table.
type Policy struct {
	Level                nexus.SafetyLevel
	RequiresConfirmation bool
	Reversible           bool
	Blocked              bool
}

// policyTable maps each action type to its risk policy. The table is
// authoritative: caller-supplied safety levels on a draft never
// downgrade the effective policy.
var policyTable = map[nexus.ActionType]Policy{
	nexus.ActionNavigate: {Level: nexus.LevelSafe, RequiresConfirmation: false, Reversible: true},
	nexus.ActionCreate:   {Level: nexus.LevelMedium, RequiresConfirmation: true, Reversible: true},
	nexus.ActionUpdate:   {Level: nexus.LevelMedium, RequiresConfirmation: true, Reversible: true},
	nexus.ActionDelete:   {Level: nexus.LevelHighRisk, RequiresConfirmation: true, Reversible: false},
	nexus.ActionPatch:    {Level: nexus.LevelDangerous, RequiresConfirmation: true, Reversible: false, Blocked: true},
	nexus.ActionExecute:  {Level: nexus.LevelDangerous, RequiresConfirmation: true, Reversible: false, Blocked: true},
}

// PolicyFor returns the policy row for an action type. Unknown types
// get the dangerous, blocked policy.
func PolicyFor(t nexus.ActionType) Policy {
	if p, ok := policyTable[t]; ok {
		return p
	}
	return Policy{Level: nexus.LevelDangerous, RequiresConfirmation: true, Blocked: true}
}

// ActionTypes returns every type the policy table covers, used by the
// startup completeness check over the handler map.
func ActionTypes() []nexus.ActionType {
	types := make([]nexus.ActionType, 0, len(policyTable))
	for t := range policyTable {
		types = append(types, t)
	}
	return types
}

// Normalize applies the policy table to a draft in place: the effective
// safety level and confirmation flag always come from the table, never
// from the caller.
func Normalize(draft *nexus.ActionDraft) Disposition {
	p := PolicyFor(draft.Type)
	draft.SafetyLevel = p.Level
	draft.RequiresConfirmation = p.RequiresConfirmation

	switch {
	case p.Blocked:
		return DispositionBlocked
	case p.RequiresConfirmation:
		return DispositionConfirm
	default:
		return DispositionAuto
	}
}
