package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// Tracker phrasing patterns, checked in order.
var (
	trackerCreatePattern = regexp.MustCompile(`(?i)\b(?:create|add|start|track)\b.*?\b(?:a |an |new )?(?:tracker|list|habit)\b(?:\s+(?:for|called|named)?\s*(.+))?`)
	trackerDeletePattern = regexp.MustCompile(`(?i)\b(?:delete|remove)\b\s+(?:my\s+)?(?:tracker|list|habit)\s+(.+)`)
	trackerUpdatePattern = regexp.MustCompile(`(?i)\b(?:update|rename|log|record)\b.*?\b(?:tracker|list|habit|entry)\b`)
	trackerAnyPattern    = regexp.MustCompile(`(?i)\b(tracker|trackers|list|habit|entry|task|item)\b`)
)

// Tracker drafts CRUD actions against the user's trackers. It never
// mutates anything itself; every change goes through the safety
// pipeline as a draft.
type Tracker struct {
	cfg nexus.AgentConfig
}

// NewTracker creates the tracker CRUD agent.
func NewTracker() *Tracker {
	return &Tracker{
		cfg: nexus.AgentConfig{
			ID:                "tracker",
			Name:              "Tracker Manager",
			Description:       "Drafts create/update/delete actions for user trackers",
			Capabilities:      []string{"crud", "tracking"},
			RateLimit:         60,
			SafetyTier:        nexus.TierHigh,
			CanProduceActions: true,
			RequiresContext:   true,
			Timeout:           10 * time.Second,
		},
	}
}

// Config returns the agent's static configuration.
func (a *Tracker) Config() nexus.AgentConfig { return a.cfg }

// CanHandle accepts prompts mentioning trackers, lists, or habits.
func (a *Tracker) CanHandle(req *nexus.Request) bool {
	return trackerAnyPattern.MatchString(req.Prompt)
}

// HealthCheck always passes.
func (a *Tracker) HealthCheck(ctx context.Context) bool { return true }

// Process turns tracker phrasing into one action draft. Deletes carry
// an insight reminding the user the change is irreversible.
func (a *Tracker) Process(ctx context.Context, req *nexus.Request, reqCtx *nexus.Context) (*nexus.AgentResult, error) {
	start := time.Now()
	now := time.Now()

	switch {
	case trackerDeletePattern.MatchString(req.Prompt):
		m := trackerDeletePattern.FindStringSubmatch(req.Prompt)
		name := strings.TrimSpace(m[1])
		draft := nexus.ActionDraft{
			ID:          uuid.New().String(),
			Type:        nexus.ActionDelete,
			Title:       fmt.Sprintf("Delete tracker %s", name),
			Description: fmt.Sprintf("Permanently delete the tracker %q and all its entries", name),
			Payload: map[string]any{
				"id": slugify(name),
			},
			SourceAgent: a.cfg.ID,
			CreatedAt:   now,
			ExpiresAt:   now.Add(5 * time.Minute),
		}
		insight := nexus.Insight{
			ID:          uuid.New().String(),
			Type:        nexus.InsightRisk,
			Severity:    nexus.SeverityWarning,
			Title:       "Deletion is permanent",
			Description: fmt.Sprintf("Deleting %q removes its history; this cannot be undone.", name),
			Confidence:  1.0,
			SourceAgent: a.cfg.ID,
			CreatedAt:   now,
		}
		return &nexus.AgentResult{
			AgentID:      a.cfg.ID,
			Success:      true,
			Answer:       fmt.Sprintf("I can delete the tracker %q, but I need you to confirm first.", name),
			Insights:     []nexus.Insight{insight},
			ActionDrafts: []nexus.ActionDraft{draft},
			Confidence:   0.85,
			Duration:     time.Since(start),
		}, nil

	case trackerCreatePattern.MatchString(req.Prompt):
		m := trackerCreatePattern.FindStringSubmatch(req.Prompt)
		name := "new tracker"
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			name = strings.TrimSpace(m[1])
		}
		draft := nexus.ActionDraft{
			ID:          uuid.New().String(),
			Type:        nexus.ActionCreate,
			Title:       fmt.Sprintf("Create tracker %s", name),
			Description: fmt.Sprintf("Create a new tracker named %q", name),
			Payload: map[string]any{
				"data": map[string]any{
					"name": name,
				},
			},
			SourceAgent: a.cfg.ID,
			CreatedAt:   now,
			ExpiresAt:   now.Add(5 * time.Minute),
		}
		return &nexus.AgentResult{
			AgentID:      a.cfg.ID,
			Success:      true,
			Answer:       fmt.Sprintf("I've drafted a new tracker called %q; confirm to create it.", name),
			ActionDrafts: []nexus.ActionDraft{draft},
			Confidence:   0.8,
			Duration:     time.Since(start),
		}, nil

	case trackerUpdatePattern.MatchString(req.Prompt):
		draft := nexus.ActionDraft{
			ID:          uuid.New().String(),
			Type:        nexus.ActionUpdate,
			Title:       "Update tracker",
			Description: "Apply the requested tracker change",
			Payload: map[string]any{
				"id":   "tracker",
				"data": map[string]any{"note": req.Prompt},
			},
			SourceAgent: a.cfg.ID,
			CreatedAt:   now,
			ExpiresAt:   now.Add(5 * time.Minute),
		}
		return &nexus.AgentResult{
			AgentID:      a.cfg.ID,
			Success:      true,
			Answer:       "I've drafted that tracker update; confirm to apply it.",
			ActionDrafts: []nexus.ActionDraft{draft},
			Confidence:   0.7,
			Duration:     time.Since(start),
		}, nil
	}

	return &nexus.AgentResult{
		AgentID:    a.cfg.ID,
		Success:    true,
		Answer:     "Your trackers are up to date.",
		Confidence: 0.5,
		Duration:   time.Since(start),
	}, nil
}
