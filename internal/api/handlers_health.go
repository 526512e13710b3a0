// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status         string            `json:"status"`
	Ready          bool              `json:"ready"`
	Uptime         float64           `json:"uptime"`
	LinksLoadedAt  *time.Time        `json:"links_loaded_at,omitempty"`
	LinksError     string            `json:"links_error,omitempty"`
	LastPoll       *time.Time        `json:"last_poll,omitempty"`
	Breakers       map[string]string `json:"breakers"`
	WebSocketCount int               `json:"websocket_clients"`
}

// HealthLive handles liveness probe requests. It always returns 200 while
// the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Time{}, false)
}

// HealthReady handles readiness probe requests. Ready means the first
// links load succeeded; later failures keep the last snapshot and stay
// ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.store.Ready() {
		msg := "links not loaded yet"
		if err := h.store.LastError(); err != nil {
			msg = "links not loaded: " + err.Error()
		}
		respondError(w, http.StatusServiceUnavailable, CodeNotReady, msg, nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"ready": true}, time.Time{}, false)
}

// Health reports readiness, the age of the link snapshot and liveness data,
// and every circuit breaker's state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:   "healthy",
		Ready:    h.store.Ready(),
		Uptime:   time.Since(h.startTime).Seconds(),
		Breakers: h.backend.BreakerStates(),
	}

	if snap := h.store.Snapshot(); snap != nil && !snap.LoadedAt.IsZero() {
		loaded := snap.LoadedAt
		status.LinksLoadedAt = &loaded
	}
	if err := h.store.LastError(); err != nil {
		status.LinksError = err.Error()
		status.Status = "degraded"
	}
	if h.liveness != nil {
		if last := h.liveness.LastPoll(); !last.IsZero() {
			status.LastPoll = &last
		}
	}
	for _, state := range status.Breakers {
		if state != "closed" {
			status.Status = "degraded"
		}
	}
	if !status.Ready {
		status.Status = "starting"
	}
	if h.wsHub != nil {
		status.WebSocketCount = h.wsHub.GetClientCount()
	}

	respondSuccess(w, http.StatusOK, status, time.Time{}, false)
}
