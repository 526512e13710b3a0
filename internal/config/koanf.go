// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/signboard/config.yaml",
	"/etc/signboard/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultLimitCaps is the descending sequence tried when a backend rejects a
// list limit with 422.
var DefaultLimitCaps = []int{200, 100, 50}

func defaultConfig() *Config {
	return &Config{
		Backends: BackendsConfig{
			Device: "http://127.0.0.1:8000",
			Group:  "http://127.0.0.1:8001",
			Shop:   "http://127.0.0.1:8002",
			Video:  "http://127.0.0.1:8003",
			Link:   "http://127.0.0.1:8005",
		},
		HTTPClient: HTTPClientConfig{
			Timeout:        30 * time.Second,
			RateLimitRPS:   50,
			RateLimitBurst: 100,
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Pagination: PaginationConfig{
			LimitCaps: append([]int(nil), DefaultLimitCaps...),
		},
		Links: LinksConfig{
			ReloadInterval: 30 * time.Second,
			ListLimit:      1000,
		},
		Liveness: LivenessConfig{
			Interval:       30 * time.Second,
			RequestTimeout: 10 * time.Second,
			MaxConcurrency: 0,
		},
		Telemetry: TelemetryConfig{
			CacheTTL: time.Minute,
		},
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// LINK_API_URL -> backends.link, LIVENESS_INTERVAL -> liveness.interval
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when they come
// from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// intSliceConfigPaths are parsed from comma-separated integers.
var intSliceConfigPaths = []string{
	"pagination.limit_caps",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		if parts := splitCSV(strVal); len(parts) > 0 {
			if err := k.Set(path, parts); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}

	for _, path := range intSliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := splitCSV(strVal)
		ints := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("%s: %q is not an integer", path, p)
			}
			ints = append(ints, n)
		}
		if err := k.Set(path, ints); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// Backend services
	"device_api_url": "backends.device",
	"group_api_url":  "backends.group",
	"shop_api_url":   "backends.shop",
	"video_api_url":  "backends.video",
	"link_api_url":   "backends.link",

	// Outbound HTTP client
	"http_client_timeout":   "http_client.timeout",
	"api_auth_token":        "http_client.auth_token",
	"api_auth_token_file":   "http_client.auth_token_file",
	"backend_rate_limit":    "http_client.rate_limit_rps",
	"backend_rate_burst":    "http_client.rate_limit_burst",
	"circuit_max_requests":  "circuit_breaker.max_requests",
	"circuit_interval":      "circuit_breaker.interval",
	"circuit_timeout":       "circuit_breaker.timeout",
	"circuit_min_requests":  "circuit_breaker.min_requests",
	"circuit_failure_ratio": "circuit_breaker.failure_ratio",

	// Pagination, links and liveness
	"limit_caps":               "pagination.limit_caps",
	"links_reload_interval":    "links.reload_interval",
	"links_list_limit":         "links.list_limit",
	"liveness_interval":        "liveness.interval",
	"liveness_request_timeout": "liveness.request_timeout",
	"liveness_max_concurrency": "liveness.max_concurrency",
	"telemetry_cache_ttl":      "telemetry.cache_ttl",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"cors_origins":       "security.cors_origins",
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path,
// returning "" for unmapped names so they are skipped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
