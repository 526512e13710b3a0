// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

// Package telemetry turns device telemetry into chart geometry and uptime
// statistics. Everything here is pure: no I/O, no clocks except the now
// argument, and no errors. Missing data is reported with an ok flag.
package telemetry
