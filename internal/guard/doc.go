// Package guard scans action payloads and prompts for content that must
// not pass through the orchestration pipeline: embedded credentials,
// destructive shell commands, and bulk-destructive SQL. The safety layer
// consults the scanner before classifying an action draft; a blocking
// finding forces the draft out of the auto-apply path.
package guard
