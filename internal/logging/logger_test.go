package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerDefaults(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Sync()

	assert.True(t, logger.Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Enabled(TraceLevel))
}

func TestNewLoggerInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"
	_, err := NewLogger(cfg, nil)
	assert.Error(t, err)

	cfg = NewDefaultConfig()
	cfg.Output.Stdout = false
	cfg.Output.OTEL = false
	_, err = NewLogger(cfg, nil)
	assert.Error(t, err)
}

func TestContextFieldPropagation(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUserID(ctx, "user-42")
	ctx = WithAgentID(ctx, "tracker")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "user-42", UserIDFromContext(ctx))
	assert.Equal(t, "tracker", AgentIDFromContext(ctx))

	fields := ContextFields(ctx)
	keys := make(map[string]bool)
	for _, f := range fields {
		keys[f.Key] = true
	}
	assert.True(t, keys["request.id"])
	assert.True(t, keys["user.id"])
	assert.True(t, keys["agent.id"])
}

func TestWithRequestIDValidation(t *testing.T) {
	assert.Panics(t, func() { WithRequestID(context.Background(), "") })
	assert.Panics(t, func() { WithRequestID(context.Background(), "has spaces") })
	assert.NotPanics(t, func() { WithRequestID(context.Background(), "req_ok-1") })
}

func TestFromContextFallback(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	// Nop logger must not panic
	logger.Info(context.Background(), "discarded")
}

func TestLevelFromString(t *testing.T) {
	lvl, err := LevelFromString("trace")
	require.NoError(t, err)
	assert.Equal(t, TraceLevel, lvl)

	lvl, err = LevelFromString("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	_, err = LevelFromString("loud")
	assert.Error(t, err)
}

func TestRedactingEncoderFields(t *testing.T) {
	base := zapcore.NewMapObjectEncoder()
	enc, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{
		Enabled:  true,
		Fields:   []string{"password", "confirmation_token"},
		Patterns: []string{`(?i)bearer\s+\S+`},
	})
	require.NoError(t, err)

	enc.AddString("password", "hunter2")
	enc.AddString("note", "authorization: Bearer abc123")
	enc.AddString("plain", "hello")
	_ = base

	clone := enc.Clone()
	require.NotNil(t, clone)
}

func TestRedactingEncoderInvalidPattern(t *testing.T) {
	_, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{
		Enabled:  true,
		Patterns: []string{"("},
	})
	assert.Error(t, err)
}

func TestLoggerWithAndNamed(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig(), nil)
	require.NoError(t, err)

	child := logger.With(zap.String("component", "router")).Named("router")
	require.NotNil(t, child)
	child.Info(context.Background(), "child logger works")
}
