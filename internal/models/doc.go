// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package models defines the wire types shared between the backend clients,
the domain packages and the HTTP API.

Key Components:

  - LinkRow: one flat link row from the link service
  - LinkPayload: body for creating a link
  - UptimeReport, Session, StatusEvent: device uptime data
  - APIResponse: standardized API response wrapper

Backend payloads are loosely typed. Identifiers, numbers and timestamps use
the tolerant types from package normalize so that a single odd field does not
reject the whole row.
*/
package models
