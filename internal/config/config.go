// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

// Package config loads Signboard configuration with Koanf v2.
//
// Configuration Loading Order:
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (CONFIG_PATH or the default search paths)
//  3. Environment Variables: explicitly mapped names override everything
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Backends       BackendsConfig       `koanf:"backends"`
	HTTPClient     HTTPClientConfig     `koanf:"http_client"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	Pagination     PaginationConfig     `koanf:"pagination"`
	Links          LinksConfig          `koanf:"links"`
	Liveness       LivenessConfig       `koanf:"liveness"`
	Telemetry      TelemetryConfig      `koanf:"telemetry"`
	Server         ServerConfig         `koanf:"server"`
	Security       SecurityConfig       `koanf:"security"`
	Logging        LoggingConfig        `koanf:"logging"`
}

// BackendsConfig holds the base URL of every backend service.
// The link and device-status endpoints historically live on the same service.
//
// Environment Variables:
//   - DEVICE_API_URL (default: http://127.0.0.1:8000)
//   - GROUP_API_URL  (default: http://127.0.0.1:8001)
//   - SHOP_API_URL   (default: http://127.0.0.1:8002)
//   - VIDEO_API_URL  (default: http://127.0.0.1:8003)
//   - LINK_API_URL   (default: http://127.0.0.1:8005)
type BackendsConfig struct {
	Device string `koanf:"device"`
	Group  string `koanf:"group"`
	Shop   string `koanf:"shop"`
	Video  string `koanf:"video"`
	Link   string `koanf:"link"`
}

// HTTPClientConfig holds the outbound HTTP client settings shared by all backends.
type HTTPClientConfig struct {
	Timeout time.Duration `koanf:"timeout"`

	// AuthToken is sent as a bearer token. AuthTokenFile takes precedence
	// when set and is re-read whenever the file changes.
	AuthToken     string `koanf:"auth_token"`
	AuthTokenFile string `koanf:"auth_token_file"`

	// RateLimitRPS of 0 disables client-side rate limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// CircuitBreakerConfig tunes the per-service circuit breakers.
type CircuitBreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// PaginationConfig holds the single source of truth for list limit caps.
// LimitCaps is tried in order when a backend rejects a limit with 422.
type PaginationConfig struct {
	LimitCaps []int `koanf:"limit_caps"`
}

// LinksConfig controls the link reload loop.
type LinksConfig struct {
	ReloadInterval time.Duration `koanf:"reload_interval"`
	ListLimit      int           `koanf:"list_limit"`
}

// LivenessConfig controls the per-device liveness poller.
type LivenessConfig struct {
	Interval       time.Duration `koanf:"interval"`
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// MaxConcurrency of 0 dispatches every device request at once.
	MaxConcurrency int `koanf:"max_concurrency"`
}

// TelemetryConfig controls telemetry response caching.
type TelemetryConfig struct {
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// SecurityConfig holds CORS and inbound rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
