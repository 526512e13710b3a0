// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: request id propagation plus logging context (request_id,
    correlation_id) for every handler
  - PrometheusMetrics: request count, latency histogram and in-flight gauge
    labelled by chi route pattern

Both have the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/links", h.Links)
	})

PrometheusMetrics must run inside the router (r.Use within a Route or on the
root router) so the route pattern is known once the handler returns.
*/
package middleware
