package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Telemetry manages OpenTelemetry providers for traces and metrics.
// When disabled or degraded it hands out noop tracers and meters so
// instrumented code never has to nil-check.
type Telemetry struct {
	cfg    *Config
	logger *zap.Logger

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	healthy  atomic.Bool
	degraded atomic.Bool
}

// New initializes telemetry from config. Initialization failures degrade
// to noop providers rather than failing startup; the returned Telemetry
// is always usable.
func New(ctx context.Context, cfg *Config, logger *zap.Logger) (*Telemetry, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Telemetry{cfg: cfg, logger: logger}

	if !cfg.Enabled {
		t.healthy.Store(true)
		return t, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		logger.Warn("trace exporter init failed, tracing degraded", zap.Error(err))
		t.degraded.Store(true)
	} else {
		t.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		logger.Warn("metric exporter init failed, metrics degraded", zap.Error(err))
		t.degraded.Store(true)
	} else if mp != nil {
		t.meterProvider = mp
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.healthy.Store(!t.degraded.Load())
	return t, nil
}

// Tracer returns a named tracer, or a noop tracer when disabled.
func (t *Telemetry) Tracer(name string) trace.Tracer {
	if t.tracerProvider == nil {
		return tracenoop.NewTracerProvider().Tracer(name)
	}
	return t.tracerProvider.Tracer(name)
}

// Meter returns a named meter, or a noop meter when disabled.
func (t *Telemetry) Meter(name string) metric.Meter {
	if t.meterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return t.meterProvider.Meter(name)
}

// IsEnabled reports whether telemetry was enabled in config.
func (t *Telemetry) IsEnabled() bool {
	return t.cfg.Enabled
}

// Healthy reports whether all configured exporters initialized.
func (t *Telemetry) Healthy() bool {
	return t.healthy.Load()
}

// ForceFlush flushes pending spans and metrics.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	var firstErr error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.ForceFlush(ctx); err != nil {
			firstErr = fmt.Errorf("flushing traces: %w", err)
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flushing metrics: %w", err)
		}
	}
	return firstErr
}

// Shutdown flushes and stops all providers. Safe to call when disabled.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, t.cfg.Shutdown.Timeout.Duration())
	defer cancel()

	var firstErr error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(shutdownCtx); err != nil {
			firstErr = fmt.Errorf("shutting down tracer provider: %w", err)
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutting down meter provider: %w", err)
		}
	}
	t.healthy.Store(false)
	return firstErr
}
