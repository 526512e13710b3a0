// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package cache provides a thread-safe, generic in-memory cache with TTL support.

It sits in front of the telemetry endpoints so that repeated chart requests
for the same device and range do not hit the backend again within the TTL.

# Overview

  - Generic values (Cache[V]), no type assertions at the call site
  - Per-entry TTL with lazy expiration on Get
  - Background sweep of expired entries, stopped with Close
  - Hit/miss statistics, mirrored to the cache_hits_total and cache_misses_total counters

# Usage Example

	charts := cache.New[telemetry.Chart]("telemetry", cfg.Telemetry.CacheTTL)
	defer charts.Close()

	key := cache.GenerateKey("temperature", struct {
	    DeviceID string
	    Range    string
	}{id, rng})
	if chart, ok := charts.Get(key); ok {
	    return chart
	}

# Thread Safety

Entries and statistics are guarded by separate RWMutexes, so reading stats
never blocks cache reads.
*/
package cache
