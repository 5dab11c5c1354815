// Package services provides the centralized service registry for nexusd.
//
// Bootstrap constructs every core service from configuration (scanner,
// agent registry, rate limiter, safety pipeline, memory and tracker
// stores, provenance, router) and wires them together. Use NewRegistry()
// to assemble a registry from existing instances, then accessor methods
// to retrieve individual services.
package services
