// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package metrics provides Prometheus metrics for the gateway.

All collectors are registered on the default registry via promauto and
exposed at /metrics by the API router.

# Available Metrics

Backend Metrics:
  - backend_requests_total: Outbound requests (counter)
    Labels: service, method, status_code
  - backend_request_duration_seconds: Outbound latency (histogram)
  - backend_fallback_attempts_total: Fallback executor attempts (counter)
    Labels: operation, outcome

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels: name, result
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total: Labels: name, from_state, to_state

Liveness Metrics:
  - liveness_batch_duration_seconds (histogram)
  - liveness_devices_polled_total, liveness_check_failures_total (counters)
  - liveness_devices: Labels: status (gauge)
  - liveness_triggers_total: Labels: source, coalesced

Link Store Metrics:
  - links_reload_duration_seconds (histogram)
  - links_reload_errors_total, links_rows_dropped_total (counters)
  - links_aggregates, links_last_reload_timestamp_seconds (gauges)

API Metrics:
  - api_requests_total: Labels: method, endpoint, status_code
  - api_request_duration_seconds: Labels: method, endpoint
  - api_active_requests (gauge)
  - api_rate_limit_hits_total

# Usage

	start := time.Now()
	resp, err := client.Do(req)
	metrics.RecordBackendRequest("link", req.Method, resp.StatusCode, time.Since(start))
*/
package metrics
