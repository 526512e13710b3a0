// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package links

import (
	"math"
	"strings"

	"github.com/tomtom215/signboard/internal/liveness"
)

// Summary holds dashboard counts over a set of aggregates.
type Summary struct {
	TotalDevices      int      `json:"total_devices"`
	OnlineDevices     int      `json:"online_devices"`
	OfflineDevices    int      `json:"offline_devices"`
	TotalGroups       int      `json:"total_groups"`
	TotalShops        int      `json:"total_shops"`
	TotalVideos       int      `json:"total_videos"`
	TotalLinks        int      `json:"total_links"`
	AvgTemperature    *float64 `json:"avg_temperature"`
	MinTemperature    *float64 `json:"min_temperature"`
	MaxTemperature    *float64 `json:"max_temperature"`
	TotalDailyCount   float64  `json:"total_daily_count"`
	TotalMonthlyCount float64  `json:"total_monthly_count"`
}

// Summarize computes dashboard counts. A device counts as online only when
// status says Online; Unknown and Offline both count as not online. Empty
// group and shop names are not counted. Temperature statistics use finite
// values only and are nil when there are none.
func Summarize(rows []AggregateRow, status liveness.StatusMap) Summary {
	devices := make(map[string]struct{})
	groups := make(map[string]struct{})
	shops := make(map[string]struct{})
	videos := make(map[string]struct{})

	var s Summary
	var tempSum float64
	tempCount := 0
	minTemp, maxTemp := math.Inf(1), math.Inf(-1)

	for i := range rows {
		row := &rows[i]
		devices[row.MobileID] = struct{}{}
		if row.GName != "" {
			groups[row.GName] = struct{}{}
		}
		if row.ShopName != "" {
			shops[row.ShopName] = struct{}{}
		}
		for _, v := range row.Videos {
			videos[v] = struct{}{}
		}
		s.TotalLinks += len(row.Originals)

		if t := row.Temperature; t.Valid && !math.IsNaN(t.Value) && !math.IsInf(t.Value, 0) {
			tempSum += t.Value
			tempCount++
			minTemp = math.Min(minTemp, t.Value)
			maxTemp = math.Max(maxTemp, t.Value)
		}
		if row.DailyCount.Valid {
			s.TotalDailyCount += row.DailyCount.Value
		}
		if row.MonthlyCount.Valid {
			s.TotalMonthlyCount += row.MonthlyCount.Value
		}
	}

	for id := range devices {
		if status.IsOnline(id) {
			s.OnlineDevices++
		} else {
			s.OfflineDevices++
		}
	}

	s.TotalDevices = len(devices)
	s.TotalGroups = len(groups)
	s.TotalShops = len(shops)
	s.TotalVideos = len(videos)

	if tempCount > 0 {
		avg := tempSum / float64(tempCount)
		s.AvgTemperature = &avg
		s.MinTemperature = &minTemp
		s.MaxTemperature = &maxTemp
	}

	return s
}

// Query filters aggregates. Every non-empty field must match as a
// case-insensitive substring; Q matches if any of device, group, shop or
// video list contains it.
type Query struct {
	Device string
	Group  string
	Shop   string
	Video  string
	Q      string
}

// IsZero reports whether the query filters nothing.
func (q Query) IsZero() bool {
	return strings.TrimSpace(q.Device) == "" &&
		strings.TrimSpace(q.Group) == "" &&
		strings.TrimSpace(q.Shop) == "" &&
		strings.TrimSpace(q.Video) == "" &&
		strings.TrimSpace(q.Q) == ""
}

// Filter returns the aggregates matching q, preserving order. The input is
// not modified.
func Filter(rows []AggregateRow, q Query) []AggregateRow {
	device := needle(q.Device)
	group := needle(q.Group)
	shop := needle(q.Shop)
	video := needle(q.Video)
	free := needle(q.Q)

	out := make([]AggregateRow, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		d := strings.ToLower(row.MobileID)
		g := strings.ToLower(row.GName)
		s := strings.ToLower(row.ShopName)
		v := strings.ToLower(strings.Join(row.Videos, ", "))

		if !strings.Contains(d, device) || !strings.Contains(g, group) ||
			!strings.Contains(s, shop) || !strings.Contains(v, video) {
			continue
		}
		if free != "" && !strings.Contains(d, free) && !strings.Contains(g, free) &&
			!strings.Contains(s, free) && !strings.Contains(v, free) {
			continue
		}
		out = append(out, *row)
	}
	return out
}

func needle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
