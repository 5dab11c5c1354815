package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabled(t *testing.T) {
	cfg := NewDefaultConfig()
	require.False(t, cfg.Enabled)

	tel, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, tel)

	assert.False(t, tel.IsEnabled())
	assert.True(t, tel.Healthy())
	assert.NotNil(t, tel.Tracer("test"))
	assert.NotNil(t, tel.Meter("test"))
	assert.NoError(t, tel.ForceFlush(context.Background()))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNewNilConfig(t *testing.T) {
	tel, err := New(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.False(t, tel.IsEnabled())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"disabled skips validation", func(c *Config) { c.Enabled = false; c.Endpoint = "" }, false},
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, true},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, true},
		{"insecure remote endpoint", func(c *Config) { c.Endpoint = "collector.example.com:4317" }, true},
		{"insecure local ok", func(c *Config) { c.Endpoint = "localhost:4317" }, false},
		{"insecure loopback ok", func(c *Config) { c.Endpoint = "127.0.0.1:4317" }, false},
		{"sampling rate too high", func(c *Config) { c.Sampling.Rate = 1.5 }, true},
		{"negative sampling rate", func(c *Config) { c.Sampling.Rate = -0.1 }, true},
		{"zero export interval", func(c *Config) { c.Metrics.ExportInterval = 0 }, true},
		{"zero shutdown timeout", func(c *Config) { c.Shutdown.Timeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Enabled = true
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		local    bool
	}{
		{"localhost:4317", true},
		{"127.0.0.1:4317", true},
		{"127.0.0.53:4317", true},
		{"[::1]:4317", true},
		{"collector.example.com:4317", false},
		{"10.0.0.5:4317", false},
	}

	for _, tt := range tests {
		cfg := &Config{Endpoint: tt.endpoint}
		assert.Equal(t, tt.local, cfg.isLocalEndpoint(), tt.endpoint)
	}
}
