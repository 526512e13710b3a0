// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateBackends(); err != nil {
		return err
	}
	if err := c.validateHTTPClient(); err != nil {
		return err
	}
	if err := c.validateCircuitBreaker(); err != nil {
		return err
	}
	if err := c.validatePagination(); err != nil {
		return err
	}
	if err := c.validatePolling(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBackends() error {
	backends := []struct {
		name string
		url  string
	}{
		{"DEVICE_API_URL", c.Backends.Device},
		{"GROUP_API_URL", c.Backends.Group},
		{"SHOP_API_URL", c.Backends.Shop},
		{"VIDEO_API_URL", c.Backends.Video},
		{"LINK_API_URL", c.Backends.Link},
	}
	for _, b := range backends {
		if b.url == "" {
			return fmt.Errorf("%s is required", b.name)
		}
		if err := validateHTTPURL(b.url, b.name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateHTTPClient() error {
	if c.HTTPClient.Timeout <= 0 {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT must be positive")
	}
	if c.HTTPClient.RateLimitRPS < 0 {
		return fmt.Errorf("BACKEND_RATE_LIMIT must be >= 0")
	}
	if c.HTTPClient.RateLimitRPS > 0 && c.HTTPClient.RateLimitBurst < 1 {
		return fmt.Errorf("BACKEND_RATE_BURST must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateCircuitBreaker() error {
	cb := c.CircuitBreaker
	if cb.MaxRequests == 0 {
		return fmt.Errorf("CIRCUIT_MAX_REQUESTS must be at least 1")
	}
	if cb.Timeout <= 0 {
		return fmt.Errorf("CIRCUIT_TIMEOUT must be positive")
	}
	if cb.FailureRatio <= 0 || cb.FailureRatio > 1 {
		return fmt.Errorf("CIRCUIT_FAILURE_RATIO must be in (0, 1], got %v", cb.FailureRatio)
	}
	return nil
}

// validatePagination requires a non-empty, strictly descending list of positive caps.
func (c *Config) validatePagination() error {
	caps := c.Pagination.LimitCaps
	if len(caps) == 0 {
		return fmt.Errorf("LIMIT_CAPS must contain at least one value")
	}
	for i, v := range caps {
		if v <= 0 {
			return fmt.Errorf("LIMIT_CAPS values must be positive, got %d", v)
		}
		if i > 0 && v >= caps[i-1] {
			return fmt.Errorf("LIMIT_CAPS must be strictly descending, got %v", caps)
		}
	}
	return nil
}

func (c *Config) validatePolling() error {
	if c.Links.ReloadInterval <= 0 {
		return fmt.Errorf("LINKS_RELOAD_INTERVAL must be positive")
	}
	if c.Links.ListLimit < 1 {
		return fmt.Errorf("LINKS_LIST_LIMIT must be at least 1")
	}
	if c.Liveness.Interval <= 0 {
		return fmt.Errorf("LIVENESS_INTERVAL must be positive")
	}
	if c.Liveness.RequestTimeout <= 0 {
		return fmt.Errorf("LIVENESS_REQUEST_TIMEOUT must be positive")
	}
	if c.Liveness.MaxConcurrency < 0 {
		return fmt.Errorf("LIVENESS_MAX_CONCURRENCY must be >= 0")
	}
	if c.Telemetry.CacheTTL < 0 {
		return fmt.Errorf("TELEMETRY_CACHE_TTL must be >= 0")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
