package nexus

import (
	"context"
	"fmt"
	"time"
)

// Agent is a registered unit capable of turning a request into an answer,
// insights, and/or action drafts.
type Agent interface {
	// Config returns the agent's static configuration.
	Config() AgentConfig

	// Process handles one request under the given per-request context.
	Process(ctx context.Context, req *Request, reqCtx *Context) (*AgentResult, error)

	// CanHandle reports whether the agent wants this request.
	CanHandle(req *Request) bool

	// HealthCheck probes the agent's readiness.
	HealthCheck(ctx context.Context) bool
}

// AgentConfig is an agent's static configuration. Immutable after
// registration; only enable/disable state toggles at runtime.
type AgentConfig struct {
	// ID uniquely identifies the agent.
	ID string `json:"id"`

	// Name is the human-readable agent name.
	Name string `json:"name"`

	// Description explains what the agent does.
	Description string `json:"description,omitempty"`

	// Capabilities tags the agent for capability-based lookup.
	Capabilities []string `json:"capabilities"`

	// RateLimit is the per-window invocation cap for this agent.
	RateLimit int `json:"rate_limit"`

	// SafetyTier is the maximum request tier the agent accepts.
	SafetyTier SafetyTier `json:"safety_tier"`

	// CanProduceActions marks agents allowed to emit action drafts.
	// Drafts from other agents are dropped during synthesis.
	CanProduceActions bool `json:"can_produce_actions"`

	// RequiresContext marks agents that read the built request context.
	// Advisory: the router builds a context for every request.
	RequiresContext bool `json:"requires_context"`

	// Timeout bounds one Process invocation. Zero means the router default.
	Timeout time.Duration `json:"timeout"`
}

// Validate checks configuration invariants.
func (c *AgentConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("agent id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("agent %s: name is required", c.ID)
	}
	if len(c.Capabilities) == 0 {
		return fmt.Errorf("agent %s: at least one capability is required", c.ID)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("agent %s: rate limit cannot be negative", c.ID)
	}
	if c.SafetyTier != 0 && !c.SafetyTier.Valid() {
		return fmt.Errorf("agent %s: invalid safety tier %d", c.ID, c.SafetyTier)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("agent %s: timeout cannot be negative", c.ID)
	}
	return nil
}

// AgentResult is the output of one agent invocation. Discarded after
// synthesis except through provenance.
type AgentResult struct {
	// AgentID names the producing agent.
	AgentID string `json:"agent_id"`

	// Success marks whether the invocation completed.
	Success bool `json:"success"`

	// Answer is the agent's text contribution.
	Answer string `json:"answer,omitempty"`

	// Insights are structured findings emitted by the agent.
	Insights []Insight `json:"insights,omitempty"`

	// ActionDrafts are proposed, unexecuted mutations.
	ActionDrafts []ActionDraft `json:"action_drafts,omitempty"`

	// ProvenanceID links the invocation's audit record.
	ProvenanceID string `json:"provenance_id,omitempty"`

	// Confidence is the agent's self-reported confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Duration is wall-clock processing time.
	Duration time.Duration `json:"duration"`

	// Error holds the failure reason when Success is false.
	Error string `json:"error,omitempty"`
}

// FailedResult builds an error result for an agent that did not run
// to completion.
func FailedResult(agentID string, err error, duration time.Duration) *AgentResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &AgentResult{
		AgentID:  agentID,
		Success:  false,
		Duration: duration,
		Error:    msg,
	}
}
