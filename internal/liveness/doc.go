// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package liveness tracks whether each linked device is online.

The Poller owns the device set (fed by the links store) and a published
StatusMap snapshot. Every batch probes all devices concurrently through the
link service, with an optional cap on in-flight requests
(liveness.max_concurrency, via errgroup.SetLimit), and merges the results once
the whole batch has settled.

A device the poller has never reached reads as Unknown. A probe that fails
for any reason reads as Offline for that device only.

Usage Example:

	poller := liveness.NewPoller(services, cfg.Liveness)
	poller.OnUpdate(func(m liveness.StatusMap) { hub.BroadcastJSON("online_status", m) })
	poller.SetDevices([]string{"M-001", "M-002"})
	if err := poller.Start(ctx); err != nil {
	    return err
	}
	defer poller.Stop()
*/
package liveness
