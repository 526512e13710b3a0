// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/signboard/internal/cache"
	"github.com/tomtom215/signboard/internal/liveness"
	"github.com/tomtom215/signboard/internal/models"
	"github.com/tomtom215/signboard/internal/telemetry"
)

// dateLayout is the format of the uptime query dates.
const dateLayout = "2006-01-02"

// TemperatureResponse is the body of the temperature endpoint. Chart is nil
// when the series has no usable samples.
type TemperatureResponse struct {
	MobileID string           `json:"mobile_id"`
	Range    telemetry.Range  `json:"range"`
	Chart    *telemetry.Chart `json:"chart"`
	Samples  int              `json:"samples"`
	Dropped  int              `json:"dropped"`
}

// UptimeResponse is the body of the uptime endpoint.
type UptimeResponse struct {
	MobileID  string `json:"mobile_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	telemetry.UptimeView
}

// deviceID returns the trimmed {id} URL parameter, writing a 400 when it is
// empty.
func deviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "device id is required", nil)
		return "", false
	}
	return id, true
}

// DeviceOnline probes one device directly, bypassing the poller snapshot.
func (h *Handler) DeviceOnline(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res := h.backend.GetDeviceOnlineStatus(r.Context(), id)
	if !res.OK {
		respondBackendError(w, r, "device_online", res)
		return
	}

	online := liveness.ExtractOnline(res.Data)
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"mobile_id":     id,
		"online":        online,
		"online_status": liveness.FromBool(online),
	}, start, false)
}

// DeviceTemperature returns the chart for a device's temperature series.
// Unknown ranges fall back to the default range. Results are cached per
// device and range.
func (h *Handler) DeviceTemperature(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	rng, known := telemetry.LookupRange(r.URL.Query().Get("range"))
	if !known {
		rng, _ = telemetry.LookupRange(telemetry.DefaultTemperatureRange)
	}

	key := cache.GenerateKey("temperature", map[string]interface{}{"mobile_id": id, "range": rng.Name})
	if cached, hit := h.tempCache.Get(key); hit {
		respondSuccess(w, http.StatusOK, cached, time.Time{}, true)
		return
	}

	start := time.Now()
	res := h.backend.GetDeviceTemperatureSeries(r.Context(), id, rng.Days, rng.Bucket)
	if !res.OK {
		respondBackendError(w, r, "device_temperature", res)
		return
	}

	points, dropped := telemetry.ParseTemperatureItems(res.List())
	out := TemperatureResponse{
		MobileID: id,
		Range:    rng,
		Samples:  len(points),
		Dropped:  dropped,
	}
	if chart, ok := telemetry.Transform(points); ok {
		out.Chart = &chart
	}

	h.tempCache.Set(key, out)
	respondSuccess(w, http.StatusOK, out, start, false)
}

// DeviceUptime returns the uptime view for a date range. Without dates the
// range is the last 7 days.
func (h *Handler) DeviceUptime(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	req := UptimeRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	now := h.now()
	rng, _ := telemetry.LookupRange(telemetry.DefaultUptimeRange)
	from, to := rng.Window(now)
	if req.StartDate != "" {
		from, _ = time.Parse(dateLayout, req.StartDate)
	}
	if req.EndDate != "" {
		to, _ = time.Parse(dateLayout, req.EndDate)
	}
	if from.Format(dateLayout) > to.Format(dateLayout) {
		respondError(w, http.StatusBadRequest, CodeValidation, ErrDateOrder.Error(), nil)
		return
	}

	start := time.Now()
	res := h.backend.GetDeviceUptimeReport(r.Context(), id, from, to)
	if !res.OK {
		respondBackendError(w, r, "device_uptime", res)
		return
	}

	var report models.UptimeReport
	if err := res.Decode(&report); err != nil {
		respondError(w, http.StatusBadGateway, CodeBackend, "uptime report could not be decoded", err)
		return
	}

	respondSuccess(w, http.StatusOK, UptimeResponse{
		MobileID:   id,
		StartDate:  from.Format(dateLayout),
		EndDate:    to.Format(dateLayout),
		UptimeView: telemetry.BuildUptimeView(report, now),
	}, start, false)
}

// DeviceDownloads returns the download records of a device as the backend
// sent them, normalized to a list.
func (h *Handler) DeviceDownloads(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res := h.backend.GetDeviceDownloads(r.Context(), id)
	if !res.OK {
		respondBackendError(w, r, "device_downloads", res)
		return
	}

	list := res.List()
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"mobile_id": id,
		"items":     list.Items,
		"total":     list.Total,
	}, start, false)
}
