// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package liveness

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/tomtom215/signboard/internal/normalize"
)

// Status is the tri-state liveness of a device.
type Status int8

const (
	// Unknown means the device has not been polled yet.
	Unknown Status = iota
	Online
	Offline
)

// String returns unknown, online or offline.
func (s Status) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// FromBool maps a poll outcome to Online or Offline.
func FromBool(online bool) Status {
	if online {
		return Online
	}
	return Offline
}

// StatusMap maps mobile_id to Status. A published StatusMap is never
// mutated; every change builds a new map.
type StatusMap map[string]Status

// Get returns the status of id, Unknown when it was never polled.
func (m StatusMap) Get(id string) Status {
	if s, ok := m[id]; ok {
		return s
	}
	return Unknown
}

// IsOnline reports whether id is known to be online.
func (m StatusMap) IsOnline(id string) bool {
	return m.Get(id) == Online
}

// Merge returns a new map holding old overwritten by batch.
func Merge(old StatusMap, batch map[string]bool) StatusMap {
	out := make(StatusMap, len(old)+len(batch))
	for id, s := range old {
		out[id] = s
	}
	for id, online := range batch {
		out[id] = FromBool(online)
	}
	return out
}

// Retain returns a new map holding only the entries for ids.
func (m StatusMap) Retain(ids []string) StatusMap {
	out := make(StatusMap, len(ids))
	for _, id := range ids {
		if s, ok := m[id]; ok {
			out[id] = s
		}
	}
	return out
}

// Counts tallies the statuses of ids. Ids absent from the map count as
// unknown.
func (m StatusMap) Counts(ids []string) (online, offline, unknown int) {
	for _, id := range ids {
		switch m.Get(id) {
		case Online:
			online++
		case Offline:
			offline++
		default:
			unknown++
		}
	}
	return online, offline, unknown
}

// onlineFields are checked in order before falling back to the payload.
var onlineFields = []string{"online", "is_online", "isOnline", "status"}

// ExtractOnline reads a device status payload. Backends have answered with
// {"online": true}, {"is_online": 1}, {"status": "Online"} and a bare
// true or "offline"; anything undecidable is false.
func ExtractOnline(payload []byte) bool {
	raw := bytes.TrimSpace(payload)
	if len(raw) == 0 {
		return false
	}

	if raw[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return false
		}
		for _, field := range onlineFields {
			if v, ok := obj[field]; ok {
				if online, decided := normalize.Bool(v); decided {
					return online
				}
			}
		}
		return false
	}

	online, _ := normalize.Bool(raw)
	return online
}
