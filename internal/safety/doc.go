// Package safety classifies action drafts by risk, validates their
// payloads, manages the confirmation-token lifecycle, and dispatches
// confirmed actions to registered handlers.
//
// Every draft passes through a static policy table keyed by action
// type. The table decides three things: the effective safety level
// (caller-supplied levels never weaken it), whether explicit user
// confirmation is required, and whether the action is reversible.
// Dangerous types (patch, execute) are blocked from direct execution
// entirely; their handler always returns a pending-review artifact, so
// even a confirmed token cannot make them mutate anything.
package safety
