// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package api provides the HTTP REST API and WebSocket endpoint of Signboard.

The API exposes the aggregated link view, per-device telemetry, the catalog
name lists and the write operations that edit links through the backend
fallback executor. Routing uses the Chi router; every response shares the
models.APIResponse envelope encoded with goccy/go-json.

# Endpoints

Health:
  - GET  /api/v1/health/live: liveness probe
  - GET  /api/v1/health/ready: 200 once the first links load succeeded
  - GET  /api/v1/health: readiness plus circuit breaker states

Links:
  - GET    /api/v1/links: aggregates with liveness (q, device, group, shop, video filters)
  - GET    /api/v1/links/summary: dashboard counters
  - POST   /api/v1/links: create one link
  - DELETE /api/v1/links/{id}: delete one link
  - PUT    /api/v1/aggregates/videos: replace the videos of an aggregate via a diff
  - DELETE /api/v1/aggregates: delete every link of an aggregate

Devices:
  - GET /api/v1/devices/{id}/online: direct status probe
  - GET /api/v1/devices/{id}/temperature?range=24h|7d|30d|90d
  - GET /api/v1/devices/{id}/uptime?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
  - GET /api/v1/devices/{id}/downloads

Catalog:
  - GET /api/v1/catalog/{kind}: shops, groups, videos or devices name lists
  - GET /api/v1/groups/{name}/videos
  - PUT /api/v1/groups/{name}/videos

Other:
  - POST /api/v1/liveness/refresh: request a liveness batch
  - GET  /api/v1/ws: online_status and links_reloaded pushes
  - GET  /metrics: Prometheus metrics

# Middleware

Requests pass through request id assignment (with logging context),
chi RealIP and Recoverer, CORS, Prometheus instrumentation and, on the
/api/v1 routes, an httprate limit keyed by client IP.

# Errors

Backend failures keep the backend status where it is meaningful: 4xx
responses pass through, an open circuit breaker becomes 503 and transport
errors or 5xx become 502 with code BACKEND_ERROR.
*/
package api
