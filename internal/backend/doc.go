// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package backend talks to the device, group, shop, video and link services.

The backends are independent services whose endpoints have drifted between
releases: a status route may live under three different paths, and list
endpoints may reject a large limit with 422. This package hides that drift
behind typed operations that always return a Result value instead of a Go
error.

Key Components:

  - Client: one per backend service. Adds the bearer token, applies a token
    bucket (golang.org/x/time/rate) and runs every request through a
    circuit breaker (sony/gobreaker/v2)
  - Executor: tries an operation's ordered candidate endpoints, shrinking
    the limit on 422 and advancing on 404/405
  - Services: the typed operations (links, device status and telemetry,
    catalog lists, group videos)
  - TokenProvider: static or file-backed bearer token

Failure Classification:

	404, 405                  next candidate
	422 with limit            smaller caps, then no params
	401, 403, 5xx, transport  fatal, returned as is
	breaker open              fatal, Status 503

Only transport errors and 5xx responses count as breaker failures. A
canceled request context is neither a success nor a backend fault and is
recorded as a success.

Usage Example:

	svc := backend.NewServices(cfg, nil)
	res := svc.GetDeviceOnlineStatus(ctx, "M-001")
	if !res.OK {
	    logging.Warn().Int("status", res.Status).Msg(res.Message)
	    return
	}

Thread Safety:

Client, Executor and Services are safe for concurrent use. An Executor runs
the attempts of one operation sequentially.
*/
package backend
