// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package websocket pushes live updates to connected admin UIs.

# Messages

Server to client:

	{"type": "online_status",  "data": {"timestamp": "...", "online": 12, "offline": 3, "unknown": 0, "devices": {"m-1": "online"}}}
	{"type": "links_reloaded", "data": {"timestamp": "...", "aggregates": 40, "devices": 15, "rows": 97, "dropped": 0}}
	{"type": "pong",           "data": null}

Client to server:

	{"type": "ping"}

# Architecture

The Hub owns the client set. It runs under the supervisor via
RunWithContext and fans each broadcast out to every client's 256-slot send
buffer. A client whose buffer is full is disconnected rather than allowed to
stall the hub.

Each Client runs a read pump (pings, close detection) and a write pump
(messages plus keepalive pings every 54s).

Wiring:

	poller.OnUpdate(hub.BroadcastOnlineStatus)
	store.OnReload(hub.BroadcastLinksReloaded)

Broadcast helpers never block the caller, which matters because they are
invoked on the poller and store goroutines.
*/
package websocket
