// Package config provides configuration loading for nexusd.
//
// Configuration is loaded from a YAML file and overridden by environment
// variables. This package covers the HTTP server, observability, and the
// orchestration engine (router, rate limiter, safety pipeline, memory
// ranking) settings.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete nexusd configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Observability ObservabilityConfig `koanf:"observability"`
	Router        RouterConfig        `koanf:"router"`
	RateLimit     RateLimitConfig     `koanf:"ratelimit"`
	Safety        SafetyConfig        `koanf:"safety"`
	Memory        MemoryConfig        `koanf:"memory"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	ServiceName     string `koanf:"service_name"`
	Endpoint        string `koanf:"endpoint"`
}

// RouterConfig holds request router configuration.
type RouterConfig struct {
	// DefaultAgentTimeout bounds a single agent invocation when the agent
	// does not declare its own timeout.
	DefaultAgentTimeout Duration `koanf:"default_agent_timeout"`

	// MaxPromptLength is the maximum accepted prompt size in characters.
	MaxPromptLength int `koanf:"max_prompt_length"`

	// MaxHistoryMessages is the number of conversation turns kept; excess
	// is trimmed with a warning.
	MaxHistoryMessages int `koanf:"max_history_messages"`
}

// RateLimitConfig holds fixed-window rate limiter configuration.
type RateLimitConfig struct {
	Window      Duration `koanf:"window"`
	GlobalLimit int      `koanf:"global_limit"`
	UserLimit   int      `koanf:"user_limit"`
	AgentLimit  int      `koanf:"agent_limit"`
}

// SafetyConfig holds safety pipeline configuration.
type SafetyConfig struct {
	// ConfirmationTTL is how long a confirmation token stays valid.
	ConfirmationTTL Duration `koanf:"confirmation_ttl"`

	// MaxPayloadBytes caps the serialized action payload size.
	MaxPayloadBytes int `koanf:"max_payload_bytes"`
}

// MemoryConfig holds memory ranking configuration.
type MemoryConfig struct {
	VectorWeight     float64  `koanf:"vector_weight"`
	RecencyWeight    float64  `koanf:"recency_weight"`
	ImportanceWeight float64  `koanf:"importance_weight"`
	FrequencyWeight  float64  `koanf:"frequency_weight"`
	MaxAge           Duration `koanf:"max_age"`
	MinScore         float64  `koanf:"min_score"`
	MaxResults       int      `koanf:"max_results"`
}

// Default returns a configuration with production-ready defaults.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9180
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "nexusd"
	}
	if cfg.Observability.Endpoint == "" {
		cfg.Observability.Endpoint = "localhost:4317"
	}

	if cfg.Router.DefaultAgentTimeout == 0 {
		cfg.Router.DefaultAgentTimeout = Duration(10 * time.Second)
	}
	if cfg.Router.MaxPromptLength == 0 {
		cfg.Router.MaxPromptLength = 10000
	}
	if cfg.Router.MaxHistoryMessages == 0 {
		cfg.Router.MaxHistoryMessages = 50
	}

	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = Duration(60 * time.Second)
	}
	if cfg.RateLimit.GlobalLimit == 0 {
		cfg.RateLimit.GlobalLimit = 1000
	}
	if cfg.RateLimit.UserLimit == 0 {
		cfg.RateLimit.UserLimit = 60
	}
	if cfg.RateLimit.AgentLimit == 0 {
		cfg.RateLimit.AgentLimit = 120
	}

	if cfg.Safety.ConfirmationTTL == 0 {
		cfg.Safety.ConfirmationTTL = Duration(5 * time.Minute)
	}
	if cfg.Safety.MaxPayloadBytes == 0 {
		cfg.Safety.MaxPayloadBytes = 64 * 1024
	}

	if cfg.Memory.VectorWeight == 0 && cfg.Memory.RecencyWeight == 0 &&
		cfg.Memory.ImportanceWeight == 0 && cfg.Memory.FrequencyWeight == 0 {
		cfg.Memory.VectorWeight = 0.4
		cfg.Memory.RecencyWeight = 0.3
		cfg.Memory.ImportanceWeight = 0.2
		cfg.Memory.FrequencyWeight = 0.1
	}
	if cfg.Memory.MaxAge == 0 {
		cfg.Memory.MaxAge = Duration(7 * 24 * time.Hour)
	}
	if cfg.Memory.MinScore == 0 {
		cfg.Memory.MinScore = 0.3
	}
	if cfg.Memory.MaxResults == 0 {
		cfg.Memory.MaxResults = 5
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	if c.Router.DefaultAgentTimeout.Duration() <= 0 {
		return errors.New("default agent timeout must be positive")
	}
	if c.Router.MaxPromptLength < 1 {
		return fmt.Errorf("max prompt length must be positive, got %d", c.Router.MaxPromptLength)
	}
	if c.Router.MaxHistoryMessages < 0 {
		return fmt.Errorf("max history messages cannot be negative, got %d", c.Router.MaxHistoryMessages)
	}

	if c.RateLimit.Window.Duration() <= 0 {
		return errors.New("rate limit window must be positive")
	}
	for name, limit := range map[string]int{
		"global": c.RateLimit.GlobalLimit,
		"user":   c.RateLimit.UserLimit,
		"agent":  c.RateLimit.AgentLimit,
	} {
		if limit < 1 {
			return fmt.Errorf("%s rate limit must be positive, got %d", name, limit)
		}
	}

	if c.Safety.ConfirmationTTL.Duration() <= 0 {
		return errors.New("confirmation TTL must be positive")
	}
	if c.Safety.MaxPayloadBytes < 1 {
		return fmt.Errorf("max payload bytes must be positive, got %d", c.Safety.MaxPayloadBytes)
	}

	weightSum := c.Memory.VectorWeight + c.Memory.RecencyWeight +
		c.Memory.ImportanceWeight + c.Memory.FrequencyWeight
	if weightSum <= 0 {
		return errors.New("memory ranking weights must sum to a positive value")
	}
	if c.Memory.MinScore < 0 || c.Memory.MinScore > 1 {
		return fmt.Errorf("memory min score must be in [0,1], got %f", c.Memory.MinScore)
	}
	if c.Memory.MaxResults < 1 {
		return fmt.Errorf("memory max results must be positive, got %d", c.Memory.MaxResults)
	}

	return nil
}
