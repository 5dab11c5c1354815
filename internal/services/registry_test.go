package services

import (
	"testing"

	"github.com/fyrsmithlabs/nexusd/internal/config"
	"github.com/fyrsmithlabs/nexusd/internal/memory"
	"github.com/fyrsmithlabs/nexusd/internal/ratelimit"
	reg "github.com/fyrsmithlabs/nexusd/internal/registry"
)

func TestNewRegistry(t *testing.T) {
	var _ Registry = (*registry)(nil)
}

func TestRegistryAccessors(t *testing.T) {
	// Empty options: every accessor returns nil, never panics
	r := NewRegistry(Options{})

	if r.Config() != nil {
		t.Error("expected nil config")
	}
	if r.Scanner() != nil {
		t.Error("expected nil scanner")
	}
	if r.Agents() != nil {
		t.Error("expected nil agent registry")
	}
	if r.Limiter() != nil {
		t.Error("expected nil limiter")
	}
	if r.Safety() != nil {
		t.Error("expected nil safety pipeline")
	}
	if r.Router() != nil {
		t.Error("expected nil router")
	}
}

func TestRegistryWithServices(t *testing.T) {
	agents := reg.New(nil)
	memories := memory.NewStore()
	limiter := ratelimit.New(config.Default().RateLimit)
	trackers := NewTrackerStore()

	r := NewRegistry(Options{
		Agents:   agents,
		Memories: memories,
		Limiter:  limiter,
		Trackers: trackers,
	})

	// Accessors return the same instances
	if r.Agents() != agents {
		t.Error("agent registry mismatch")
	}
	if r.Memories() != memories {
		t.Error("memory store mismatch")
	}
	if r.Limiter() != limiter {
		t.Error("limiter mismatch")
	}
	if r.Trackers() != trackers {
		t.Error("tracker store mismatch")
	}
}
