// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package links groups flat link rows into device/group/shop aggregates and
keeps the latest aggregate snapshot loaded from the link service.

# Aggregation

The link service returns one row per (device, group, shop, video). Aggregate
folds rows sharing (mobile_id, gname, shop_name) into one AggregateRow:

	rows:                                aggregates:
	  1 m-1 lobby main intro.mp4           m-1 lobby main [intro.mp4 promo.mp4]
	  2 m-1 lobby main promo.mp4    -->      originals: 1, 2
	  3 m-2 lobby main intro.mp4           m-2 lobby main [intro.mp4]

Telemetry (temperature, daily/monthly counts, rotation) comes from the first
row of each key.

# Edits

DiffVideos, ApplyVideoEdit and DeleteAggregate turn aggregate-level edits into
individual link deletes and creates. Writes are sequential, deletes first,
and partial failures are reported in EditResult rather than aborting.

# Store

Store reloads the snapshot every links.reload_interval and whenever
TriggerReload is called. The snapshot is published through an
atomic.Pointer and never mutated after publication. When the set of devices
changes, OnDevicesChanged subscribers are notified; the liveness poller
subscribes so new devices are probed without waiting for its interval.
*/
package links
