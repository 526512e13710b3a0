// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package links

import (
	"strings"

	"github.com/tomtom215/signboard/internal/models"
	"github.com/tomtom215/signboard/internal/normalize"
)

// Key identifies an aggregate: one device in one group at one shop.
type Key struct {
	MobileID string `json:"mobile_id" validate:"required,max=128"`
	GName    string `json:"gname" validate:"max=256"`
	ShopName string `json:"shop_name" validate:"max=256"`
}

// Original is one underlying link row of an aggregate.
type Original struct {
	ID        string `json:"id"`
	VideoName string `json:"video_name"`
}

// AggregateRow groups the link rows sharing a Key.
//
// Videos is an ordered set in first-seen order; IDByVideo maps each video to
// the id of the last row carrying it. Telemetry comes from the first row seen
// for the key. Originals holds every row, so len(Originals) is the number of
// rows grouped under the key.
type AggregateRow struct {
	Key
	Videos       []string           `json:"videos"`
	IDByVideo    map[string]string  `json:"id_by_video"`
	Temperature  normalize.OptFloat `json:"temperature"`
	DailyCount   normalize.OptFloat `json:"daily_count"`
	MonthlyCount normalize.OptFloat `json:"monthly_count"`
	Rotation     normalize.OptFloat `json:"rotation"`
	Originals    []Original         `json:"originals"`
}

// Aggregate groups link rows by (mobile_id, gname, shop_name). Output is in
// first-seen key order. mobile_id is trimmed so keys match the ids the
// liveness poller probes. Rows without a mobile_id are skipped and counted in
// dropped.
func Aggregate(rows []models.LinkRow) (aggregates []AggregateRow, dropped int) {
	index := make(map[Key]int)
	aggregates = make([]AggregateRow, 0)

	for _, row := range rows {
		mobileID := strings.TrimSpace(row.MobileID)
		if mobileID == "" {
			dropped++
			continue
		}

		key := Key{MobileID: mobileID, GName: row.GName, ShopName: row.ShopName}
		i, ok := index[key]
		if !ok {
			i = len(aggregates)
			index[key] = i
			aggregates = append(aggregates, AggregateRow{
				Key:          key,
				Videos:       []string{},
				IDByVideo:    map[string]string{},
				Temperature:  row.Temperature,
				DailyCount:   row.DailyCount,
				MonthlyCount: row.MonthlyCount,
				Rotation:     row.Rotation,
				Originals:    []Original{},
			})
		}

		agg := &aggregates[i]
		id := row.ID.String()
		agg.Originals = append(agg.Originals, Original{ID: id, VideoName: row.VideoName})
		if _, seen := agg.IDByVideo[row.VideoName]; !seen {
			agg.Videos = append(agg.Videos, row.VideoName)
		}
		agg.IDByVideo[row.VideoName] = id
	}

	return aggregates, dropped
}

// Devices returns the distinct mobile ids of aggregates in first-seen order.
func Devices(aggregates []AggregateRow) []string {
	out := make([]string, 0, len(aggregates))
	seen := make(map[string]struct{}, len(aggregates))
	for i := range aggregates {
		id := aggregates[i].MobileID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Find returns the aggregate with the given key.
func Find(aggregates []AggregateRow, key Key) (AggregateRow, bool) {
	for i := range aggregates {
		if aggregates[i].Key == key {
			return aggregates[i], true
		}
	}
	return AggregateRow{}, false
}
