// Package config provides unified configuration for the gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (DUCKGATE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Backend       BackendConfig       `yaml:"backend"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MiB
}

// BackendConfig holds upstream chat backend settings.
type BackendConfig struct {
	BaseURL    string        `yaml:"base_url"`    // default: https://duckduckgo.com
	StatusPath string        `yaml:"status_path"` // default: /duckchat/v1/status
	ChatPath   string        `yaml:"chat_path"`   // default: /duckchat/v1/chat
	UserAgent  string        `yaml:"user_agent"`  // default: browser-like UA
	Referer    string        `yaml:"referer"`     // default: backend origin
	Timeout    time.Duration `yaml:"timeout"`     // token probe timeout, default: 30s
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type      string           `yaml:"type"`       // "none", "apikey", or "jwt", default: "none"
	APIKeys   []APIKeyConfig   `yaml:"api_keys"`   // key entries for type=apikey
	JWT       JWTConfig        `yaml:"jwt"`        // settings for type=jwt
	RateLimit RateLimitConfig  `yaml:"rate_limit"` // optional per-tier limits
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key         string `yaml:"key"`
	KeyFile     string `yaml:"key_file"` // _file variant for key
	Subject     string `yaml:"subject"`
	ServiceTier string `yaml:"service_tier"`
}

// JWTConfig holds JWT/OIDC validation settings.
type JWTConfig struct {
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
	JWKSURL  string `yaml:"jwks_url"`
}

// RateLimitConfig holds per-tier request limits. A tier absent from the
// map falls back to DefaultRPM; zero means unlimited.
type RateLimitConfig struct {
	Enabled    bool           `yaml:"enabled"`
	DefaultRPM int            `yaml:"default_rpm"`
	Tiers      map[string]int `yaml:"tiers"` // tier name -> requests per minute
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodySize:     1 << 20,
		},
		Backend: BackendConfig{
			BaseURL:    "https://duckduckgo.com",
			StatusPath: "/duckchat/v1/status",
			ChatPath:   "/duckchat/v1/chat",
			Timeout:    30 * time.Second,
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
