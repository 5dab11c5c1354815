package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9180, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "nexusd", cfg.Observability.ServiceName)

	assert.Equal(t, 10000, cfg.Router.MaxPromptLength)
	assert.Equal(t, 50, cfg.Router.MaxHistoryMessages)

	assert.Equal(t, 60*time.Second, cfg.RateLimit.Window.Duration())
	assert.Equal(t, 5*time.Minute, cfg.Safety.ConfirmationTTL.Duration())

	assert.InDelta(t, 0.4, cfg.Memory.VectorWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Memory.RecencyWeight, 1e-9)
	assert.InDelta(t, 0.2, cfg.Memory.ImportanceWeight, 1e-9)
	assert.InDelta(t, 0.1, cfg.Memory.FrequencyWeight, 1e-9)
	assert.Equal(t, 7*24*time.Hour, cfg.Memory.MaxAge.Duration())
	assert.InDelta(t, 0.3, cfg.Memory.MinScore, 1e-9)
	assert.Equal(t, 5, cfg.Memory.MaxResults)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }},
		{"zero prompt length", func(c *Config) { c.Router.MaxPromptLength = -5 }},
		{"zero rate window", func(c *Config) { c.RateLimit.Window = 0 }},
		{"zero user limit", func(c *Config) { c.RateLimit.UserLimit = -1 }},
		{"zero confirmation ttl", func(c *Config) { c.Safety.ConfirmationTTL = 0 }},
		{"min score out of range", func(c *Config) { c.Memory.MinScore = 1.5 }},
		{"telemetry without service name", func(c *Config) {
			c.Observability.EnableTelemetry = true
			c.Observability.ServiceName = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("hunter2")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "hunter2", s.Value())
	assert.True(t, s.IsSet())

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")

	var empty Secret
	assert.False(t, empty.IsSet())
	assert.Equal(t, "", empty.String())
}
