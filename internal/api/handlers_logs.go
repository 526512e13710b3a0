// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/telemetry"
)

// defaultLogLimit is the number of log rows requested when none is given.
const defaultLogLimit = 500

// LogListResponse is a normalized list of device log rows.
type LogListResponse struct {
	MobileID  string            `json:"mobile_id,omitempty"`
	LogType   string            `json:"log_type,omitempty"`
	StartDate string            `json:"start_date,omitempty"`
	EndDate   string            `json:"end_date,omitempty"`
	Items     []json.RawMessage `json:"items"`
	Total     int               `json:"total"`
}

// LogTemperatureResponse is the body of the log-based temperature chart.
type LogTemperatureResponse struct {
	MobileID string             `json:"mobile_id"`
	Range    telemetry.LogRange `json:"range"`
	From     time.Time          `json:"from"`
	To       time.Time          `json:"to"`
	Chart    *telemetry.Chart   `json:"chart"`
	Samples  int                `json:"samples"`
	Dropped  int                `json:"dropped"`
}

func logItems(items []json.RawMessage) []json.RawMessage {
	if items == nil {
		return []json.RawMessage{}
	}
	return items
}

// logRequest reads and validates the shared log query parameters. Absent
// dates stay zero.
func logRequest(w http.ResponseWriter, r *http.Request) (DeviceLogsRequest, time.Time, time.Time, bool) {
	q := r.URL.Query()
	req := DeviceLogsRequest{
		LogType:   strings.TrimSpace(q.Get("log_type")),
		Limit:     getIntParam(r, "limit", defaultLogLimit),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return req, time.Time{}, time.Time{}, false
	}

	var from, to time.Time
	if req.StartDate != "" {
		from, _ = time.Parse(dateLayout, req.StartDate)
	}
	if req.EndDate != "" {
		to, _ = time.Parse(dateLayout, req.EndDate)
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		respondError(w, http.StatusBadRequest, CodeValidation, ErrDateOrder.Error(), nil)
		return req, time.Time{}, time.Time{}, false
	}
	return req, from, to, true
}

// DeviceLogSummary returns the per-device log summary for an optional date
// range.
func (h *Handler) DeviceLogSummary(w http.ResponseWriter, r *http.Request) {
	req, from, to, ok := logRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res := h.backend.ListDeviceLogSummary(r.Context(), from, to)
	if !res.OK {
		respondBackendError(w, r, "device_log_summary", res)
		return
	}

	list := res.List()
	respondSuccess(w, http.StatusOK, LogListResponse{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Items:     logItems(list.Items),
		Total:     list.Total,
	}, start, false)
}

// DeviceLogs returns the log rows of one device, optionally filtered by type
// and date.
func (h *Handler) DeviceLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}
	req, from, to, ok := logRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res := h.backend.ListDeviceLogs(r.Context(), id, backend.LogQuery{
		LogType: req.LogType,
		Limit:   req.Limit,
		Start:   from,
		End:     to,
	})
	if !res.OK {
		respondBackendError(w, r, "device_logs", res)
		return
	}

	list := res.List()
	respondSuccess(w, http.StatusOK, LogListResponse{
		MobileID:  id,
		LogType:   req.LogType,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Items:     logItems(list.Items),
		Total:     list.Total,
	}, start, false)
}

// DeviceLogTemperature charts the temperature log readings of a device over
// a lookback range. Unknown ranges fall back to the default.
func (h *Handler) DeviceLogTemperature(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	rng, known := telemetry.LookupLogRange(r.URL.Query().Get("range"))
	if !known {
		rng, _ = telemetry.LookupLogRange(telemetry.DefaultLogRange)
	}
	from, to := rng.Window(h.now())

	start := time.Now()
	res := h.backend.ListDeviceLogs(r.Context(), id, backend.LogQuery{
		LogType: telemetry.LogTypeTemperature,
		Limit:   telemetry.LogSampleLimit,
		Start:   from.UTC(),
		End:     to.UTC(),
	})
	if !res.OK {
		respondBackendError(w, r, "device_log_temperature", res)
		return
	}

	points, dropped := telemetry.ParseTemperatureLogs(res.List(), from, to)
	out := LogTemperatureResponse{
		MobileID: id,
		Range:    rng,
		From:     from,
		To:       to,
		Samples:  len(points),
		Dropped:  dropped,
	}
	if chart, ok := telemetry.Transform(points); ok {
		out.Chart = &chart
	}
	respondSuccess(w, http.StatusOK, out, start, false)
}
