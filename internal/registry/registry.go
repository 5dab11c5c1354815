// Package registry holds agent implementations and their static
// configuration, keyed by agent id.
//
// The registry provides:
//   - O(1) lookup by id returning the exact registered instance
//   - Capability-based discovery for the router
//   - Health probing and runtime enable/disable without unregistering
//
// Registration happens once at startup; configuration is immutable
// afterwards. Lookups return stable references for the duration of a
// request, so agents are never removed while in flight.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/fyrsmithlabs/nexusd/internal/nexus"
	"go.uber.org/zap"
)

// Errors for registry operations.
var (
	ErrAgentNotFound = errors.New("agent not found")
	ErrNilAgent      = errors.New("agent cannot be nil")
)

// entry pairs an agent with its runtime state.
type entry struct {
	agent   nexus.Agent
	enabled bool
	healthy bool
}

// Registry manages agent registration and lookup.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*entry
	logger *zap.Logger
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		agents: make(map[string]*entry),
		logger: logger,
	}
}

// Register stores an agent keyed by its id. Re-registering an id
// overwrites the previous agent with a warning.
func (r *Registry) Register(agent nexus.Agent) error {
	if agent == nil {
		return ErrNilAgent
	}
	cfg := agent.Config()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("registering agent: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[cfg.ID]; exists {
		r.logger.Warn("overwriting registered agent", zap.String("agent_id", cfg.ID))
	}

	r.agents[cfg.ID] = &entry{
		agent:   agent,
		enabled: true,
		healthy: true,
	}
	return nil
}

// Get returns the agent registered under id.
func (r *Registry) Get(id string) (nexus.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return e.agent, nil
}

// Has reports whether an agent is registered under id.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.agents[id]
	return ok
}

// IsEnabled reports whether the agent exists and is enabled.
func (r *Registry) IsEnabled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.agents[id]
	return ok && e.enabled
}

// FindByCapability returns enabled agents carrying the capability tag,
// sorted by id for deterministic ordering.
func (r *Registry) FindByCapability(tag string) []nexus.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []nexus.Agent
	for _, e := range r.agents {
		if !e.enabled {
			continue
		}
		for _, cap := range e.agent.Config().Capabilities {
			if cap == tag {
				matched = append(matched, e.agent)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Config().ID < matched[j].Config().ID
	})
	return matched
}

// All returns every registered agent, enabled or not, sorted by id.
func (r *Registry) All() []nexus.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]nexus.Agent, 0, len(r.agents))
	for _, e := range r.agents {
		agents = append(agents, e.agent)
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].Config().ID < agents[j].Config().ID
	})
	return agents
}

// IDs returns all registered agent ids, sorted, without duplicates.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetEnabled toggles an agent's routing eligibility at runtime.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.agents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	e.enabled = enabled
	return nil
}

// HealthCheckAll probes every registered agent and records the result.
// Unhealthy agents stay registered; callers decide whether to route
// around them.
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]bool {
	// Snapshot under read lock so probes run without holding it.
	r.mu.RLock()
	snapshot := make(map[string]nexus.Agent, len(r.agents))
	for id, e := range r.agents {
		snapshot[id] = e.agent
	}
	r.mu.RUnlock()

	results := make(map[string]bool, len(snapshot))
	for id, agent := range snapshot {
		healthy := agent.HealthCheck(ctx)
		results[id] = healthy
		if !healthy {
			r.logger.Warn("agent failed health check", zap.String("agent_id", id))
		}
	}

	r.mu.Lock()
	for id, healthy := range results {
		if e, ok := r.agents[id]; ok {
			e.healthy = healthy
		}
	}
	r.mu.Unlock()

	return results
}

// IsHealthy reports the last recorded health probe result for id.
func (r *Registry) IsHealthy(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.agents[id]
	return ok && e.healthy
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
