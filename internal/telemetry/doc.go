// Package telemetry wires OpenTelemetry tracing and metrics export over
// OTLP gRPC. Telemetry is opt-in: when disabled, Tracer and Meter return
// noop implementations so call sites stay unconditional. Exporter failures
// at startup degrade to noop rather than blocking the daemon.
package telemetry
