// Package agents holds the built-in agent implementations registered at
// startup: the default orchestrator, the UI navigation agent, the
// tracker CRUD agent, the memory agent, and the insight agent. Each is
// a small keyword-driven unit; the routing, safety, and audit machinery
// around them does the heavy lifting.
package agents
