package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// Insight produces trend and anomaly observations from session
// counters. With no data it degrades to an honest "nothing notable"
// answer rather than inventing findings.
type Insight struct {
	cfg nexus.AgentConfig
}

// NewInsight creates the insight agent.
func NewInsight() *Insight {
	return &Insight{
		cfg: nexus.AgentConfig{
			ID:              "insight",
			Name:            "Insight",
			Description:     "Surfaces trends and anomalies from session activity",
			Capabilities:    []string{"insight", "analytics"},
			RateLimit:       30,
			SafetyTier:      nexus.TierLow,
			RequiresContext: true,
			Timeout:         15 * time.Second,
		},
	}
}

// Config returns the agent's static configuration.
func (a *Insight) Config() nexus.AgentConfig { return a.cfg }

// CanHandle defers to the router's intent patterns; anything routed
// here is analyzable.
func (a *Insight) CanHandle(req *nexus.Request) bool { return true }

// HealthCheck always passes.
func (a *Insight) HealthCheck(ctx context.Context) bool { return true }

// Process inspects session counters for notable activity.
func (a *Insight) Process(ctx context.Context, req *nexus.Request, reqCtx *nexus.Context) (*nexus.AgentResult, error) {
	start := time.Now()

	if reqCtx == nil || len(reqCtx.SessionCounters) == 0 {
		return &nexus.AgentResult{
			AgentID:    a.cfg.ID,
			Success:    true,
			Answer:     "Nothing notable in your recent activity yet; check back once there's more data.",
			Confidence: 0.5,
			Duration:   time.Since(start),
		}, nil
	}

	now := time.Now()
	var insights []nexus.Insight
	for name, count := range reqCtx.SessionCounters {
		if count < 10 {
			continue
		}
		insights = append(insights, nexus.Insight{
			ID:          uuid.New().String(),
			Type:        nexus.InsightTrend,
			Severity:    nexus.SeverityInfo,
			Title:       fmt.Sprintf("High %s activity", name),
			Description: fmt.Sprintf("%s happened %d times this session, well above typical.", name, count),
			Confidence:  0.7,
			SourceAgent: a.cfg.ID,
			Data:        map[string]any{"counter": name, "count": count},
			Suggestions: []string{fmt.Sprintf("Consider a tracker for %s", name)},
			CreatedAt:   now,
		})
	}

	answer := "Your session activity looks normal."
	if len(insights) > 0 {
		answer = fmt.Sprintf("I found %d notable pattern(s) in your session activity.", len(insights))
	}

	return &nexus.AgentResult{
		AgentID:    a.cfg.ID,
		Success:    true,
		Answer:     answer,
		Insights:   insights,
		Confidence: 0.7,
		Duration:   time.Since(start),
	}, nil
}
