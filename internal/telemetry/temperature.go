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

// Bucket sizes understood by the temperature series endpoint.
const (
	BucketHour = "hour"
	BucketDay  = "day"
)

// Range is a named lookback window for telemetry queries.
type Range struct {
	Name   string `json:"name"`
	Days   int    `json:"days"`
	Bucket string `json:"bucket"`
}

// Ranges lists the supported presets.
var Ranges = []Range{
	{Name: "24h", Days: 1, Bucket: BucketHour},
	{Name: "7d", Days: 7, Bucket: BucketDay},
	{Name: "30d", Days: 30, Bucket: BucketDay},
	{Name: "90d", Days: 90, Bucket: BucketDay},
}

// DefaultTemperatureRange and DefaultUptimeRange apply when no range is given.
const (
	DefaultTemperatureRange = "30d"
	DefaultUptimeRange      = "7d"
)

// LookupRange finds a preset by name. Names are case-insensitive.
func LookupRange(name string) (Range, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range Ranges {
		if r.Name == name {
			return r, true
		}
	}
	return Range{}, false
}

// Window returns the [start, end] dates covered by r ending at now.
func (r Range) Window(now time.Time) (start, end time.Time) {
	return now.AddDate(0, 0, -r.Days), now
}

var (
	timeKeys  = []string{"t", "timestamp", "time", "logged_at"}
	valueKeys = []string{"temperature", "value"}
)

// ParseTemperatureItems converts normalized series items into points.
// Items without a parseable time or a finite value are dropped and counted.
func ParseTemperatureItems(list normalize.List) (points []Point, dropped int) {
	points = make([]Point, 0, len(list.Items))
	for _, raw := range list.Items {
		p, ok := parseSample(raw)
		if !ok {
			dropped++
			continue
		}
		points = append(points, p)
	}
	return points, dropped
}

func parseSample(raw json.RawMessage) (Point, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Point{}, false
	}

	var p Point
	for _, key := range timeKeys {
		if v, ok := obj[key]; ok {
			if t, ok := normalize.Time(v); ok {
				p.T = t
				break
			}
		}
	}
	if p.T.IsZero() {
		return Point{}, false
	}

	for _, key := range valueKeys {
		if v, ok := obj[key]; ok {
			if f, ok := normalize.Float(v); ok {
				p.V = f
				return p, true
			}
		}
	}
	return Point{}, false
}
