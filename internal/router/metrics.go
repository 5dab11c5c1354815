package router

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/nexusd/internal/router"

// routerMetrics holds the router's OTEL instruments.
type routerMetrics struct {
	meter           metric.Meter
	logger          *zap.Logger
	requestsTotal   metric.Int64Counter
	requestDur      metric.Float64Histogram
	agentExecutions metric.Int64Counter
	agentDur        metric.Float64Histogram
	rateLimited     metric.Int64Counter
}

func newRouterMetrics(logger *zap.Logger) *routerMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &routerMetrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *routerMetrics) init() {
	var err error

	m.requestsTotal, err = m.meter.Int64Counter(
		"nexusd.router.requests_total",
		metric.WithDescription("Total routed requests labeled by outcome (ok, error, rate_limited, invalid)."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn("failed to create requests counter", zap.Error(err))
	}

	m.requestDur, err = m.meter.Float64Histogram(
		"nexusd.router.request_duration_seconds",
		metric.WithDescription("End-to-end request processing duration in seconds. Use histogram_quantile for P50/P95/P99 latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.agentExecutions, err = m.meter.Int64Counter(
		"nexusd.router.agent_executions_total",
		metric.WithDescription("Agent invocations labeled by agent id and outcome (ok, error, timeout, rate_limited)."),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		m.logger.Warn("failed to create agent executions counter", zap.Error(err))
	}

	m.agentDur, err = m.meter.Float64Histogram(
		"nexusd.router.agent_duration_seconds",
		metric.WithDescription("Per-agent processing duration in seconds, labeled by agent id."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0),
	)
	if err != nil {
		m.logger.Warn("failed to create agent duration histogram", zap.Error(err))
	}

	m.rateLimited, err = m.meter.Int64Counter(
		"nexusd.router.rate_limited_total",
		metric.WithDescription("Requests refused by the rate limiter, labeled by refusing scope."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn("failed to create rate limited counter", zap.Error(err))
	}
}

func (m *routerMetrics) recordRequest(ctx context.Context, outcome string, dur time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	if m.requestsTotal != nil {
		m.requestsTotal.Add(ctx, 1, attrs)
	}
	if m.requestDur != nil {
		m.requestDur.Record(ctx, dur.Seconds(), attrs)
	}
}

func (m *routerMetrics) recordAgent(ctx context.Context, agentID, outcome string, dur time.Duration) {
	if m.agentExecutions != nil {
		m.agentExecutions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("agent_id", agentID),
			attribute.String("outcome", outcome),
		))
	}
	if m.agentDur != nil {
		m.agentDur.Record(ctx, dur.Seconds(), metric.WithAttributes(attribute.String("agent_id", agentID)))
	}
}

func (m *routerMetrics) recordRateLimited(ctx context.Context, scope string) {
	if m.rateLimited != nil {
		m.rateLimited.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
	}
}
