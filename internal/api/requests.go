// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import "github.com/tomtom215/signboard/internal/links"

// AggregateVideosRequest replaces the videos of one aggregate.
type AggregateVideosRequest struct {
	links.Key
	Videos []string `json:"videos" validate:"max=500,dive,max=512"`
}

// AggregateKeyRequest identifies one aggregate.
type AggregateKeyRequest struct {
	links.Key
}

// GroupVideosRequest replaces the video list of a group.
type GroupVideosRequest struct {
	Videos []string `json:"videos" validate:"max=500,dive,required,notblank,max=512"`
}

// UptimeRequest holds the uptime report query parameters.
type UptimeRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// CatalogRequest holds the catalog list query parameters.
type CatalogRequest struct {
	Kind   string `json:"kind" validate:"required,oneof=shops groups videos devices"`
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset int    `json:"offset" validate:"gte=0"`
	Q      string `json:"q" validate:"max=256"`
}

// DeviceLogsRequest holds the device log query parameters.
type DeviceLogsRequest struct {
	LogType   string `json:"log_type" validate:"max=64"`
	Limit     int    `json:"limit" validate:"gte=1,lte=5000"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}
