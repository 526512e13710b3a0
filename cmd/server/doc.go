// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package main is the entry point for the Signboard server.

Signboard fronts the device, group, shop, video and link backends of a
digital signage deployment. It keeps an aggregated view of device-video
links in memory, polls every linked device for liveness, and serves both
through a JSON API and a WebSocket push channel.

# Application Architecture

	RootSupervisor ("signboard")
	├── PollingSupervisor ("polling-layer")
	│   ├── websocket-hub
	│   ├── links-store
	│   ├── liveness-poller
	│   └── uptime-gauge
	└── APISupervisor ("api-layer")
	    └── http-server

Component wiring:

 1. Configuration: Koanf v2 (defaults, optional YAML file, environment)
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Backends: one rate-limited, circuit-broken client per service
 4. Links store: periodic reload, publishes snapshots and device sets
 5. Liveness poller: bounded fan-out over the current device set
 6. HTTP: chi router, CORS, per-IP rate limiting, Prometheus metrics

# Configuration

Common environment variables:

	LINK_API_URL=http://links:8005
	DEVICE_API_URL=http://devices:8000
	API_AUTH_TOKEN_FILE=/run/secrets/backend-token
	LINKS_RELOAD_INTERVAL=30s
	LIVENESS_INTERVAL=15s
	HTTP_PORT=3860
	LOG_LEVEL=info

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests for up to the configured server timeout, then the
pollers stop and WebSocket clients are closed.
*/
package main
