package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/nexusd/internal/agents"
	"github.com/fyrsmithlabs/nexusd/internal/config"
	"github.com/fyrsmithlabs/nexusd/internal/guard"
	"github.com/fyrsmithlabs/nexusd/internal/logging"
	"github.com/fyrsmithlabs/nexusd/internal/memory"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
	"github.com/fyrsmithlabs/nexusd/internal/provenance"
	"github.com/fyrsmithlabs/nexusd/internal/ratelimit"
	reg "github.com/fyrsmithlabs/nexusd/internal/registry"
	"github.com/fyrsmithlabs/nexusd/internal/router"
	"github.com/fyrsmithlabs/nexusd/internal/safety"
	"github.com/fyrsmithlabs/nexusd/internal/telemetry"
)

// Bootstrap constructs and wires every service from configuration: the
// scanner, agent registry, rate limiter, safety pipeline with its action
// handlers, memory and tracker stores, provenance tracker, and router.
// The returned registry is ready to serve.
func Bootstrap(cfg *config.Config, logger *logging.Logger, tel *telemetry.Telemetry) (Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	scanner, err := guard.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating scanner: %w", err)
	}

	memories := memory.NewStore()
	ranker := memory.NewRanker(cfg.Memory)
	trackers := NewTrackerStore()
	limiter := ratelimit.New(cfg.RateLimit)
	prov := provenance.NewTracker(provenance.NewMemoryStore(), scanner)

	pipeline := safety.NewPipeline(cfg.Safety, scanner, logger.Underlying())
	registerActionHandlers(pipeline, trackers)
	if err := pipeline.CheckHandlers(); err != nil {
		return nil, fmt.Errorf("safety pipeline incomplete: %w", err)
	}

	agentReg := reg.New(logger.Underlying())
	for _, agent := range []nexus.Agent{
		agents.NewOrchestrator(),
		agents.NewUI(),
		agents.NewTracker(),
		agents.NewMemory(memories, ranker),
		agents.NewInsight(),
	} {
		if err := agentReg.Register(agent); err != nil {
			return nil, fmt.Errorf("registering agents: %w", err)
		}
	}

	opts := router.Options{
		Config:     cfg.Router,
		Registry:   agentReg,
		Limiter:    limiter,
		Safety:     pipeline,
		Memories:   memories,
		Ranker:     ranker,
		Provenance: prov,
		Logger:     logger,
	}
	if tel != nil {
		opts.Tracer = tel.Tracer("nexusd/router")
	}
	rt, err := router.New(opts)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	return NewRegistry(Options{
		Config:     cfg,
		Logger:     logger,
		Telemetry:  tel,
		Scanner:    scanner,
		Agents:     agentReg,
		Limiter:    limiter,
		Safety:     pipeline,
		Memories:   memories,
		Ranker:     ranker,
		Trackers:   trackers,
		Provenance: prov,
		Router:     rt,
	}), nil
}

// registerActionHandlers binds the production side effects for each
// confirmable action type. Blocked types keep their built-in
// pending-review handler.
func registerActionHandlers(p *safety.Pipeline, trackers *TrackerStore) {
	// Navigation has no server-side effect; the client performs the
	// transition with the returned path.
	_ = p.RegisterHandler(nexus.ActionNavigate, func(ctx context.Context, action *nexus.NexusAction) (map[string]any, error) {
		path, _ := action.Draft.Payload["path"].(string)
		return map[string]any{"navigated": true, "path": path}, nil
	})

	_ = p.RegisterHandler(nexus.ActionCreate, func(ctx context.Context, action *nexus.NexusAction) (map[string]any, error) {
		data, _ := action.Draft.Payload["data"].(map[string]any)
		name, _ := data["name"].(string)
		if name == "" {
			name = action.Draft.Title
		}
		id, _ := action.Draft.Payload["id"].(string)
		t := trackers.Create(action.ConfirmedBy, id, name, data)
		return map[string]any{"created": true, "id": t.ID, "name": t.Name}, nil
	})

	_ = p.RegisterHandler(nexus.ActionUpdate, func(ctx context.Context, action *nexus.NexusAction) (map[string]any, error) {
		id, _ := action.Draft.Payload["id"].(string)
		data, _ := action.Draft.Payload["data"].(map[string]any)
		t, err := trackers.Update(action.ConfirmedBy, id, data)
		if err != nil {
			return nil, err
		}
		return map[string]any{"updated": true, "id": t.ID}, nil
	})

	_ = p.RegisterHandler(nexus.ActionDelete, func(ctx context.Context, action *nexus.NexusAction) (map[string]any, error) {
		id, _ := action.Draft.Payload["id"].(string)
		if err := trackers.Delete(action.ConfirmedBy, id); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": true, "id": id}, nil
	})
}

// Maintain runs periodic cleanup of expired rate-limit windows and
// confirmation tokens until the context is cancelled.
func Maintain(ctx context.Context, registry Registry, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			windows := registry.Limiter().Cleanup()
			tokens := registry.Safety().Tokens().Cleanup()
			if windows > 0 || tokens > 0 {
				registry.Logger().Debug(ctx, "maintenance sweep",
					zap.Int("expired_windows", windows),
					zap.Int("expired_tokens", tokens),
				)
			}
		}
	}
}
