// Package nexus defines the shared contracts of the orchestration core:
// requests, per-request context, the agent interface, agent results,
// insights, action drafts with their confirmation lifecycle types,
// memory items, and provenance records. Every other internal package
// consumes these types; none of them carries behavior beyond validation
// and small derived accessors.
package nexus
