// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

// Package services adapts Signboard components to suture.Service.
//
//   - LifecycleService: Start(ctx)/Stop() managers (links store, liveness poller)
//   - RunService: blocking run loops such as websocket.Hub.RunWithContext
//   - HTTPServerService: *http.Server with a bounded graceful drain
//
// Every wrapper implements fmt.Stringer so supervisor logs name the service.
package services
