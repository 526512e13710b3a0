// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package models

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/signboard/internal/normalize"
)

// Session type values.
const (
	SessionOnline  = "online"
	SessionOffline = "offline"
)

// UptimeReport is the device uptime report returned by the link service for
// a date range.
type UptimeReport struct {
	MobileID            string        `json:"mobile_id,omitempty"`
	Sessions            []Session     `json:"sessions"`
	TotalOnlineSeconds  float64       `json:"total_online_seconds"`
	TotalOfflineSeconds float64       `json:"total_offline_seconds"`
	OnlinePercentage    float64       `json:"online_percentage"`
	TotalOnlineEvents   int           `json:"total_online_events"`
	Events              []StatusEvent `json:"events,omitempty"`
}

// Session is a contiguous online or offline interval. An ongoing session has
// a zero End.
type Session struct {
	Type            string              `json:"type"`
	Start           normalize.Timestamp `json:"start"`
	End             normalize.Timestamp `json:"end"`
	Ongoing         bool                `json:"ongoing,omitempty"`
	DurationSeconds float64             `json:"duration_seconds"`
}

// StatusEvent is a raw online/offline observation.
type StatusEvent struct {
	Timestamp normalize.Timestamp `json:"timestamp"`
	Online    bool                `json:"online"`
}

// UnmarshalJSON accepts the timestamp under timestamp, t or time and the
// state as a boolean online/is_online flag or a status string.
func (e *StatusEvent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = StatusEvent{}
	for _, key := range []string{"timestamp", "t", "time"} {
		if v, ok := raw[key]; ok {
			if ts, ok := normalize.Time(v); ok {
				e.Timestamp = normalize.Timestamp{Time: ts}
				break
			}
		}
	}
	for _, key := range []string{"online", "is_online", "status", "type"} {
		if v, ok := raw[key]; ok {
			if online, ok := normalize.Bool(v); ok {
				e.Online = online
				break
			}
		}
	}
	return nil
}
