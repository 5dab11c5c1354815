package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// Orchestrator is the default agent: it handles anything no specialized
// agent claims and produces a plain answer without side effects.
type Orchestrator struct {
	cfg nexus.AgentConfig
}

// NewOrchestrator creates the default agent.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		cfg: nexus.AgentConfig{
			ID:           "orchestrator",
			Name:         "Orchestrator",
			Description:  "Default agent for requests no specialized agent claims",
			Capabilities: []string{"general"},
			RateLimit:    120,
			SafetyTier:   nexus.TierDefault,
			Timeout:      10 * time.Second,
		},
	}
}

// Config returns the agent's static configuration.
func (a *Orchestrator) Config() nexus.AgentConfig { return a.cfg }

// CanHandle accepts everything; the orchestrator is the fallback.
func (a *Orchestrator) CanHandle(req *nexus.Request) bool { return true }

// HealthCheck always passes; the orchestrator has no dependencies.
func (a *Orchestrator) HealthCheck(ctx context.Context) bool { return true }

// Process produces a generic acknowledgment, surfacing relevant
// memories when the context carries any.
func (a *Orchestrator) Process(ctx context.Context, req *nexus.Request, reqCtx *nexus.Context) (*nexus.AgentResult, error) {
	start := time.Now()

	var sb strings.Builder
	sb.WriteString("I don't have a specialized agent for that yet, but here's what I can tell you.")

	if reqCtx != nil && len(reqCtx.Memories) > 0 {
		sb.WriteString(" Based on what I remember:")
		for _, m := range reqCtx.Memories {
			sb.WriteString(fmt.Sprintf("\n- %s", m.Content))
		}
	}

	return &nexus.AgentResult{
		AgentID:    a.cfg.ID,
		Success:    true,
		Answer:     sb.String(),
		Confidence: 0.4,
		Duration:   time.Since(start),
	}, nil
}
