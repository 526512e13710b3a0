// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fallback attempt outcomes.
const (
	FallbackSuccess    = "success"
	FallbackAdvance    = "advance"
	FallbackShrink     = "shrink"
	FallbackDropParams = "drop_params"
	FallbackFatal      = "fatal"
	FallbackExhausted  = "exhausted"
)

var (
	// Backend (outbound) Metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of requests sent to backend services",
		},
		[]string{"service", "method", "status_code"}, // status_code "0" for transport errors
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service", "method"},
	)

	FallbackAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_fallback_attempts_total",
			Help: "Fallback executor attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Liveness Poller Metrics
	LivenessBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "liveness_batch_duration_seconds",
			Help:    "Duration of one online-status polling batch",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	LivenessDevicesPolled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "liveness_devices_polled_total",
			Help: "Total number of per-device online-status checks",
		},
	)

	LivenessFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "liveness_check_failures_total",
			Help: "Per-device checks that failed and were recorded as offline",
		},
	)

	LivenessDevices = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "liveness_devices",
			Help: "Devices by last observed liveness",
		},
		[]string{"status"}, // online, offline, unknown
	)

	LivenessTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liveness_triggers_total",
			Help: "Polling triggers by source, including coalesced ones",
		},
		[]string{"source", "coalesced"},
	)

	// Link Store Metrics
	LinksReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "links_reload_duration_seconds",
			Help:    "Duration of a link list reload",
			Buckets: prometheus.DefBuckets,
		},
	)

	LinksReloadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "links_reload_errors_total",
			Help: "Total number of failed link list reloads",
		},
	)

	LinksAggregates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "links_aggregates",
			Help: "Number of aggregated link rows currently held",
		},
	)

	LinksRowsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "links_rows_dropped_total",
			Help: "Link rows dropped during aggregation for missing mobile_id",
		},
	)

	LinksLastReload = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "links_last_reload_timestamp_seconds",
			Help: "Unix time of the last successful link reload",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordBackendRequest records one outbound request. status 0 means the
// request never produced an HTTP response.
func RecordBackendRequest(service, method string, status int, duration time.Duration) {
	BackendRequestsTotal.WithLabelValues(service, method, strconv.Itoa(status)).Inc()
	BackendRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordFallbackAttempt records the outcome of one fallback attempt
func RecordFallbackAttempt(operation, outcome string) {
	FallbackAttempts.WithLabelValues(operation, outcome).Inc()
}

// RecordLivenessBatch records a finished polling batch.
func RecordLivenessBatch(duration time.Duration, polled, failures int) {
	LivenessBatchDuration.Observe(duration.Seconds())
	LivenessDevicesPolled.Add(float64(polled))
	LivenessFailures.Add(float64(failures))
}

// UpdateLivenessGauges sets the per-status device gauges.
func UpdateLivenessGauges(online, offline, unknown int) {
	LivenessDevices.WithLabelValues("online").Set(float64(online))
	LivenessDevices.WithLabelValues("offline").Set(float64(offline))
	LivenessDevices.WithLabelValues("unknown").Set(float64(unknown))
}

// RecordLivenessTrigger counts a poll trigger; coalesced triggers were
// absorbed by an already pending one.
func RecordLivenessTrigger(source string, coalesced bool) {
	LivenessTriggers.WithLabelValues(source, strconv.FormatBool(coalesced)).Inc()
}

// RecordLinksReload records a link store reload
func RecordLinksReload(duration time.Duration, aggregates, dropped int, err error) {
	LinksReloadDuration.Observe(duration.Seconds())
	if err != nil {
		LinksReloadErrors.Inc()
		return
	}
	LinksAggregates.Set(float64(aggregates))
	LinksRowsDropped.Add(float64(dropped))
	LinksLastReload.Set(float64(time.Now().Unix()))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
