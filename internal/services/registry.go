package services

import (
	"github.com/fyrsmithlabs/nexusd/internal/config"
	"github.com/fyrsmithlabs/nexusd/internal/guard"
	"github.com/fyrsmithlabs/nexusd/internal/logging"
	"github.com/fyrsmithlabs/nexusd/internal/memory"
	"github.com/fyrsmithlabs/nexusd/internal/provenance"
	"github.com/fyrsmithlabs/nexusd/internal/ratelimit"
	reg "github.com/fyrsmithlabs/nexusd/internal/registry"
	"github.com/fyrsmithlabs/nexusd/internal/router"
	"github.com/fyrsmithlabs/nexusd/internal/safety"
	"github.com/fyrsmithlabs/nexusd/internal/telemetry"
)

// Registry provides access to all nexusd services.
// Use accessor methods to retrieve individual services.
type Registry interface {
	Config() *config.Config
	Logger() *logging.Logger
	Telemetry() *telemetry.Telemetry
	Scanner() guard.Scanner
	Agents() *reg.Registry
	Limiter() *ratelimit.Limiter
	Safety() *safety.Pipeline
	Memories() *memory.Store
	Ranker() *memory.Ranker
	Trackers() *TrackerStore
	Provenance() *provenance.Tracker
	Router() *router.Router
}

// Options configures the registry with service instances.
type Options struct {
	Config     *config.Config
	Logger     *logging.Logger
	Telemetry  *telemetry.Telemetry
	Scanner    guard.Scanner
	Agents     *reg.Registry
	Limiter    *ratelimit.Limiter
	Safety     *safety.Pipeline
	Memories   *memory.Store
	Ranker     *memory.Ranker
	Trackers   *TrackerStore
	Provenance *provenance.Tracker
	Router     *router.Router
}

// registry is the concrete implementation of Registry.
type registry struct {
	config     *config.Config
	logger     *logging.Logger
	telemetry  *telemetry.Telemetry
	scanner    guard.Scanner
	agents     *reg.Registry
	limiter    *ratelimit.Limiter
	safety     *safety.Pipeline
	memories   *memory.Store
	ranker     *memory.Ranker
	trackers   *TrackerStore
	provenance *provenance.Tracker
	router     *router.Router
}

// NewRegistry creates a new service registry.
func NewRegistry(opts Options) Registry {
	return &registry{
		config:     opts.Config,
		logger:     opts.Logger,
		telemetry:  opts.Telemetry,
		scanner:    opts.Scanner,
		agents:     opts.Agents,
		limiter:    opts.Limiter,
		safety:     opts.Safety,
		memories:   opts.Memories,
		ranker:     opts.Ranker,
		trackers:   opts.Trackers,
		provenance: opts.Provenance,
		router:     opts.Router,
	}
}

func (r *registry) Config() *config.Config          { return r.config }
func (r *registry) Logger() *logging.Logger         { return r.logger }
func (r *registry) Telemetry() *telemetry.Telemetry { return r.telemetry }
func (r *registry) Scanner() guard.Scanner          { return r.scanner }
func (r *registry) Agents() *reg.Registry           { return r.agents }
func (r *registry) Limiter() *ratelimit.Limiter     { return r.limiter }
func (r *registry) Safety() *safety.Pipeline        { return r.safety }
func (r *registry) Memories() *memory.Store         { return r.memories }
func (r *registry) Ranker() *memory.Ranker          { return r.ranker }
func (r *registry) Trackers() *TrackerStore         { return r.trackers }
func (r *registry) Provenance() *provenance.Tracker { return r.provenance }
func (r *registry) Router() *router.Router          { return r.router }
