// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package telemetry

import (
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/signboard/internal/normalize"
)

// LogTypeTemperature is the log_type of temperature readings.
const LogTypeTemperature = "temperature"

// LogRange is a lookback window for log-based charts. Logs are queried by
// date, so windows shorter than a day are trimmed after the fetch.
type LogRange struct {
	Name     string        `json:"name"`
	Lookback time.Duration `json:"-"`
}

// LogRanges lists the log chart presets.
var LogRanges = []LogRange{
	{Name: "1h", Lookback: time.Hour},
	{Name: "6h", Lookback: 6 * time.Hour},
	{Name: "24h", Lookback: 24 * time.Hour},
	{Name: "7d", Lookback: 7 * 24 * time.Hour},
	{Name: "30d", Lookback: 30 * 24 * time.Hour},
}

// DefaultLogRange applies when no range or an unknown one is given.
const DefaultLogRange = "24h"

// LogSampleLimit caps the rows requested for a log chart.
const LogSampleLimit = 5000

// LookupLogRange finds a log chart preset by name, case-insensitively.
func LookupLogRange(name string) (LogRange, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range LogRanges {
		if r.Name == name {
			return r, true
		}
	}
	return LogRange{}, false
}

// Window returns the [start, end] instants covered by r ending at now.
func (r LogRange) Window(now time.Time) (start, end time.Time) {
	return now.Add(-r.Lookback), now
}

// ParseTemperatureLogs converts device log items into temperature points
// inside [from, to]. Items of another log_type are ignored; temperature items
// without a usable time or value are counted in dropped.
func ParseTemperatureLogs(list normalize.List, from, to time.Time) (points []Point, dropped int) {
	points = make([]Point, 0, len(list.Items))
	for _, raw := range list.Items {
		if !isTemperatureLog(raw) {
			continue
		}
		p, ok := parseSample(raw)
		if !ok {
			dropped++
			continue
		}
		if p.T.Before(from) || p.T.After(to) {
			continue
		}
		points = append(points, p)
	}
	return points, dropped
}

// isTemperatureLog reports whether a log item is a temperature reading.
// Items without a log_type are assumed to be, since the query filtered them.
func isTemperatureLog(raw json.RawMessage) bool {
	var item struct {
		LogType *string `json:"log_type"`
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return false
	}
	if item.LogType == nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(*item.LogType), LogTypeTemperature)
}
