package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fyrsmithlabs/nexusd/internal/memory"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

var (
	rememberPattern = regexp.MustCompile(`(?i)\b(?:remember|don't forget|note)\s+(?:that\s+)?(.+)`)
	recallPattern   = regexp.MustCompile(`(?i)\b(recall|what did i|did i mention|you remember)\b`)
)

// Memory persists "remember" intents and answers recall questions from
// the ranked store.
type Memory struct {
	cfg    nexus.AgentConfig
	store  *memory.Store
	ranker *memory.Ranker
}

// NewMemory creates the memory agent over the shared store and ranker.
func NewMemory(store *memory.Store, ranker *memory.Ranker) *Memory {
	return &Memory{
		cfg: nexus.AgentConfig{
			ID:              "memory",
			Name:            "Memory",
			Description:     "Stores remember intents and answers recall questions",
			Capabilities:    []string{"memory"},
			RateLimit:       60,
			SafetyTier:      nexus.TierDefault,
			RequiresContext: true,
			Timeout:         5 * time.Second,
		},
		store:  store,
		ranker: ranker,
	}
}

// Config returns the agent's static configuration.
func (a *Memory) Config() nexus.AgentConfig { return a.cfg }

// CanHandle accepts remember and recall phrasing.
func (a *Memory) CanHandle(req *nexus.Request) bool {
	return rememberPattern.MatchString(req.Prompt) || recallPattern.MatchString(req.Prompt)
}

// HealthCheck passes when the store is reachable.
func (a *Memory) HealthCheck(ctx context.Context) bool { return a.store != nil }

// Process stores new memories or answers recall questions against the
// user's ranked items.
func (a *Memory) Process(ctx context.Context, req *nexus.Request, reqCtx *nexus.Context) (*nexus.AgentResult, error) {
	start := time.Now()

	userID := "anonymous"
	if reqCtx != nil && reqCtx.UserID != "" {
		userID = reqCtx.UserID
	}

	if m := rememberPattern.FindStringSubmatch(req.Prompt); m != nil {
		content := strings.TrimSpace(m[1])
		item, err := a.store.Remember(userID, content, "user_note", 0.6)
		if err != nil {
			return nexus.FailedResult(a.cfg.ID, fmt.Errorf("storing memory: %w", err), time.Since(start)), nil
		}
		return &nexus.AgentResult{
			AgentID:    a.cfg.ID,
			Success:    true,
			Answer:     fmt.Sprintf("Got it, I'll remember that %s.", item.Content),
			Confidence: 0.9,
			Duration:   time.Since(start),
		}, nil
	}

	ranked := a.ranker.Rank(a.store.All(userID), req.Prompt, nil)
	if len(ranked) == 0 {
		return &nexus.AgentResult{
			AgentID:    a.cfg.ID,
			Success:    true,
			Answer:     "I don't have anything relevant remembered for that.",
			Confidence: 0.5,
			Duration:   time.Since(start),
		}, nil
	}

	var sb strings.Builder
	sb.WriteString("Here's what I remember:")
	for _, item := range ranked {
		sb.WriteString(fmt.Sprintf("\n- %s", item.Item.Content))
		_ = a.store.Touch(userID, item.Item.ID)
	}

	return &nexus.AgentResult{
		AgentID:    a.cfg.ID,
		Success:    true,
		Answer:     sb.String(),
		Confidence: 0.8,
		Duration:   time.Since(start),
	}, nil
}
