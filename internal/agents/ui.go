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

// navigationPattern extracts the destination from navigation phrasing.
var navigationPattern = regexp.MustCompile(`(?i)\b(?:go to|open|navigate to|take me to|show me the)\s+(?:the\s+)?([a-zA-Z0-9 _-]+?)(?:\s+(?:page|screen|view|tab))?\s*$`)

// UI turns navigation requests into safe, auto-applicable navigate
// drafts.
type UI struct {
	cfg nexus.AgentConfig
}

// NewUI creates the navigation agent.
func NewUI() *UI {
	return &UI{
		cfg: nexus.AgentConfig{
			ID:                "ui",
			Name:              "UI Navigator",
			Description:       "Resolves navigation requests into navigate action drafts",
			Capabilities:      []string{"navigation"},
			RateLimit:         120,
			SafetyTier:        nexus.TierLow,
			CanProduceActions: true,
			Timeout:           5 * time.Second,
		},
	}
}

// Config returns the agent's static configuration.
func (a *UI) Config() nexus.AgentConfig { return a.cfg }

// CanHandle accepts prompts with navigation phrasing.
func (a *UI) CanHandle(req *nexus.Request) bool {
	return navigationPattern.MatchString(req.Prompt)
}

// HealthCheck always passes.
func (a *UI) HealthCheck(ctx context.Context) bool { return true }

// Process extracts the destination and emits one navigate draft.
func (a *UI) Process(ctx context.Context, req *nexus.Request, reqCtx *nexus.Context) (*nexus.AgentResult, error) {
	start := time.Now()

	m := navigationPattern.FindStringSubmatch(req.Prompt)
	if m == nil {
		return nexus.FailedResult(a.cfg.ID, fmt.Errorf("no navigation target in prompt"), time.Since(start)), nil
	}
	destination := strings.TrimSpace(m[1])
	path := "/" + slugify(destination)

	now := time.Now()
	draft := nexus.ActionDraft{
		ID:          uuid.New().String(),
		Type:        nexus.ActionNavigate,
		Title:       fmt.Sprintf("Go to %s", destination),
		Description: fmt.Sprintf("Navigate to %s", path),
		Payload: map[string]any{
			"path": path,
		},
		SourceAgent: a.cfg.ID,
		SafetyLevel: nexus.LevelSafe,
		CreatedAt:   now,
		ExpiresAt:   now.Add(5 * time.Minute),
	}

	return &nexus.AgentResult{
		AgentID:      a.cfg.ID,
		Success:      true,
		Answer:       fmt.Sprintf("Taking you to %s.", destination),
		ActionDrafts: []nexus.ActionDraft{draft},
		Confidence:   0.9,
		Duration:     time.Since(start),
	}, nil
}

// slugify lowercases and hyphenates a destination name into a path
// segment.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")
	return s
}
