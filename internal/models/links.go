// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package models

import "github.com/tomtom215/signboard/internal/normalize"

// LinkRow is one device-group-shop-video link as returned by the link
// service. Ids arrive as numbers or strings and are held as strings.
type LinkRow struct {
	ID           normalize.ID       `json:"id"`
	MobileID     string             `json:"mobile_id"`
	GName        string             `json:"gname"`
	ShopName     string             `json:"shop_name"`
	VideoName    string             `json:"video_name"`
	Temperature  normalize.OptFloat `json:"temperature"`
	DailyCount   normalize.OptFloat `json:"daily_count"`
	MonthlyCount normalize.OptFloat `json:"monthly_count"`
	Rotation     normalize.OptFloat `json:"rotation"`
}

// LinkPayload is the body sent to create a link.
type LinkPayload struct {
	MobileID  string `json:"mobile_id" validate:"required,notblank,max=128"`
	GName     string `json:"gname" validate:"max=256"`
	ShopName  string `json:"shop_name" validate:"max=256"`
	VideoName string `json:"video_name" validate:"required,notblank,max=512"`
}

// GroupVideosPayload replaces the video list of a group.
type GroupVideosPayload struct {
	VideoNames []string `json:"video_names"`
}
