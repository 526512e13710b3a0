// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/cache"
	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/links"
	"github.com/tomtom215/signboard/internal/liveness"
	"github.com/tomtom215/signboard/internal/logging"
	ws "github.com/tomtom215/signboard/internal/websocket"
)

// Backend is the set of backend operations the API calls directly.
// *backend.Services implements it.
type Backend interface {
	links.LinkAPI
	GetDeviceOnlineStatus(ctx context.Context, mobileID string) backend.Result
	GetDeviceTemperatureSeries(ctx context.Context, mobileID string, days int, bucket string) backend.Result
	GetDeviceUptimeReport(ctx context.Context, mobileID string, start, end time.Time) backend.Result
	GetDeviceDownloads(ctx context.Context, mobileID string) backend.Result
	ListDeviceLogSummary(ctx context.Context, start, end time.Time) backend.Result
	ListDeviceLogs(ctx context.Context, mobileID string, q backend.LogQuery) backend.Result
	ListDevices(ctx context.Context, p backend.ListParams) backend.Result
	ListShops(ctx context.Context, p backend.ListParams) backend.Result
	ListGroups(ctx context.Context, p backend.ListParams) backend.Result
	ListVideos(ctx context.Context, p backend.ListParams) backend.Result
	ListGroupVideos(ctx context.Context, gname string) backend.Result
	ReplaceGroupVideos(ctx context.Context, gname string, videos []string) backend.Result
	BreakerStates() map[string]string
}

// LinkStore is the read side of the link snapshot. *links.Store implements
// it.
type LinkStore interface {
	Snapshot() *links.Snapshot
	Ready() bool
	LastError() error
	Reload(ctx context.Context) error
}

// LivenessSource provides device liveness. *liveness.Poller implements it.
type LivenessSource interface {
	Status() liveness.StatusMap
	LastPoll() time.Time
	TriggerRefresh()
}

// Handler handles HTTP requests
type Handler struct {
	config    *config.Config
	backend   Backend
	store     LinkStore
	liveness  LivenessSource
	wsHub     *ws.Hub
	tempCache *cache.Cache[TemperatureResponse]
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a new Handler. The temperature cache lives as long as
// the handler; call Close when done.
func NewHandler(cfg *config.Config, api Backend, store LinkStore, live LivenessSource, hub *ws.Hub) *Handler {
	ttl := cfg.Telemetry.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Handler{
		config:    cfg,
		backend:   api,
		store:     store,
		liveness:  live,
		wsHub:     hub,
		tempCache: cache.New[TemperatureResponse]("temperature", ttl),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Close releases the handler's cache.
func (h *Handler) Close() {
	h.tempCache.Close()
}

// ClearCache empties the telemetry cache.
func (h *Handler) ClearCache() {
	h.tempCache.Clear()
	logging.Info().Msg("Telemetry cache cleared")
}

// getUpgrader returns a WebSocket upgrader with origin validation
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins. Browsers
// always send Origin, so a missing header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and registers a hub client.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "WebSocket hub not available", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()

	// Send the current liveness right away so the client need not wait for
	// the next batch.
	if h.liveness != nil {
		h.wsHub.BroadcastOnlineStatus(h.liveness.Status())
	}
}

// reloadAfterWrite refreshes the link snapshot after a write so the next
// list call sees it. A failed reload keeps the old snapshot and is logged.
func (h *Handler) reloadAfterWrite(ctx context.Context) {
	if err := h.store.Reload(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Links reload after write failed")
	}
}
