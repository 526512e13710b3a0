// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/signboard/internal/middleware"
)

// Router handles HTTP routing
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a new router
func NewRouter(handler *Handler, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMiddleware,
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// Health endpoints are not rate limited so probes never fail on load.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Route("/links", func(r chi.Router) {
			r.Get("/", router.handler.Links)
			r.Get("/summary", router.handler.LinksSummary)
			r.Post("/", router.handler.CreateLink)
			r.Delete("/{id}", router.handler.DeleteLink)
		})

		r.Route("/aggregates", func(r chi.Router) {
			r.Put("/videos", router.handler.EditAggregateVideos)
			r.Delete("/", router.handler.DeleteAggregateLinks)
		})

		r.Get("/devices/logs/summary", router.handler.DeviceLogSummary)
		r.Route("/devices/{id}", func(r chi.Router) {
			r.Get("/online", router.handler.DeviceOnline)
			r.Get("/temperature", router.handler.DeviceTemperature)
			r.Get("/uptime", router.handler.DeviceUptime)
			r.Get("/downloads", router.handler.DeviceDownloads)
			r.Get("/logs", router.handler.DeviceLogs)
			r.Get("/logs/temperature", router.handler.DeviceLogTemperature)
		})

		r.Get("/catalog/{kind}", router.handler.Catalog)

		r.Route("/groups/{name}", func(r chi.Router) {
			r.Get("/videos", router.handler.GroupVideos)
			r.Put("/videos", router.handler.ReplaceGroupVideos)
		})

		r.Post("/liveness/refresh", router.handler.LivenessRefresh)

		r.Get("/ws", router.handler.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
