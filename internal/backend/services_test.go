// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/models"
)

// fakeBackend serves every backend service from one httptest server and
// records the requests it saw.
type fakeBackend struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeBackend) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	line := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		line += "?" + r.URL.RawQuery
	}
	f.requests = append(f.requests, line)
	f.bodies = append(f.bodies, string(body))
}

func (f *fakeBackend) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeBackend) LastBody() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		return ""
	}
	return f.bodies[len(f.bodies)-1]
}

func newTestServices(t *testing.T, routes map[string]http.HandlerFunc) (*Services, *fakeBackend) {
	t.Helper()
	fake := &fakeBackend{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		if h, ok := routes[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Backends: config.BackendsConfig{
			Device: server.URL,
			Group:  server.URL,
			Shop:   server.URL,
			Video:  server.URL,
			Link:   server.URL,
		},
		HTTPClient:     config.HTTPClientConfig{Timeout: 2 * time.Second},
		CircuitBreaker: testBreakerConfig(),
		Pagination:     config.PaginationConfig{LimitCaps: []int{200, 100, 50}},
	}
	return NewServices(cfg, StaticToken("t")), fake
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestServices_ListLinks(t *testing.T) {
	svc, fake := newTestServices(t, map[string]http.HandlerFunc{
		"GET /links": respond(http.StatusOK, `{
			"items": [
				{"id": 1, "mobile_id": "M1", "gname": "G", "shop_name": "S", "video_name": "a.mp4", "temperature": 41.5},
				{"id": "2", "mobile_id": "M1", "gname": "G", "shop_name": "S", "video_name": "b.mp4", "temperature": null},
				{"id": 3, "mobile_id": {"bad": true}}
			],
			"total": "7"
		}`),
	})

	page, res := svc.ListLinks(context.Background(), 1000, 0)

	checkBool(t, "OK", res.OK, true)
	checkIntEqual(t, "items", len(page.Items), 2)
	checkIntEqual(t, "total", page.Total, 7)
	checkIntEqual(t, "dropped", page.Dropped, 1)
	checkStringEqual(t, "id[0]", page.Items[0].ID.String(), "1")
	checkStringEqual(t, "id[1]", page.Items[1].ID.String(), "2")
	checkBool(t, "temperature[0] valid", page.Items[0].Temperature.Valid, true)
	checkBool(t, "temperature[1] valid", page.Items[1].Temperature.Valid, false)
	checkStrings(t, "requests", fake.Requests(), []string{"GET /links?limit=1000&offset=0"})
}

func TestServices_ListLinksFailure(t *testing.T) {
	svc, _ := newTestServices(t, map[string]http.HandlerFunc{
		"GET /links": respond(http.StatusUnauthorized, `{"detail":"bad token"}`),
	})

	page, res := svc.ListLinks(context.Background(), 1000, 0)

	checkBool(t, "OK", res.OK, false)
	checkIntEqual(t, "Status", res.Status, http.StatusUnauthorized)
	checkStringEqual(t, "Message", res.Message, "bad token")
	checkIntEqual(t, "items", len(page.Items), 0)
}

func TestServices_CreateLinkFallback(t *testing.T) {
	svc, fake := newTestServices(t, map[string]http.HandlerFunc{
		"POST /links/create": respond(http.StatusMethodNotAllowed, ``),
		"POST /links":        respond(http.StatusCreated, `{"id": 99}`),
	})

	res := svc.CreateLink(context.Background(), models.LinkPayload{
		MobileID: "M1", GName: "G", ShopName: "S", VideoName: "a.mp4",
	})

	checkBool(t, "OK", res.OK, true)
	checkIntEqual(t, "Status", res.Status, http.StatusCreated)
	checkStrings(t, "requests", fake.Requests(), []string{
		"POST /link",
		"POST /links/create",
		"POST /links",
	})
	checkStringEqual(t, "body", fake.LastBody(), `{"mobile_id":"M1","gname":"G","shop_name":"S","video_name":"a.mp4"}`)
}

func TestServices_DeleteLink(t *testing.T) {
	svc, fake := newTestServices(t, map[string]http.HandlerFunc{
		"DELETE /link/42": respond(http.StatusOK, `{"ok": true}`),
	})

	res := svc.DeleteLink(context.Background(), "   ")
	checkBool(t, "empty OK", res.OK, false)
	checkIntEqual(t, "empty Status", res.Status, http.StatusBadRequest)
	checkIntEqual(t, "requests after empty id", len(fake.Requests()), 0)

	res = svc.DeleteLink(context.Background(), "42")
	checkBool(t, "OK", res.OK, true)
	checkStrings(t, "requests", fake.Requests(), []string{"DELETE /link/42"})
}

func TestServices_GetDeviceOnlineStatus(t *testing.T) {
	svc, fake := newTestServices(t, map[string]http.HandlerFunc{
		"GET /device/M1/status": respond(http.StatusOK, `{"status": "online"}`),
	})

	res := svc.GetDeviceOnlineStatus(context.Background(), "M1")

	checkBool(t, "OK", res.OK, true)
	checkStringEqual(t, "Data", string(res.Data), `{"status": "online"}`)
	checkStrings(t, "requests", fake.Requests(), []string{
		"GET /device/M1/online",
		"GET /device/M1/status",
	})
}

func TestServices_TelemetryRequests(t *testing.T) {
	svc, fake := newTestServices(t, map[string]http.HandlerFunc{
		"GET /device/M1/temperature_series": respond(http.StatusOK, `[]`),
		"GET /device/M1/uptime_report":      respond(http.StatusOK, `{"sessions": []}`),
	})

	start := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 1, 0, 0, 0, time.UTC)

	checkBool(t, "temperature OK", svc.GetDeviceTemperatureSeries(context.Background(), "M1", 7, "day").OK, true)
	checkBool(t, "uptime OK", svc.GetDeviceUptimeReport(context.Background(), "M1", start, end).OK, true)
	checkStrings(t, "requests", fake.Requests(), []string{
		"GET /device/M1/temperature_series?bucket=day&days=7",
		"GET /device/M1/uptime_report?end_date=2026-03-08&start_date=2026-03-01",
	})
}

func TestServices_ListShopsShrinksLimit(t *testing.T) {
	svc, fake := newTestServices(t, map[string]http.HandlerFunc{
		"GET /shops": func(w http.ResponseWriter, r *http.Request) {
			if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 100 {
				respond(http.StatusUnprocessableEntity, `{"detail":[{"msg":"limit must be <= 100"}]}`)(w, r)
				return
			}
			respond(http.StatusOK, `[{"shop_name": "Lobby"}]`)(w, r)
		},
	})

	res := svc.ListShops(context.Background(), ListParams{Limit: 1000, Q: "lob"})

	checkBool(t, "OK", res.OK, true)
	checkIntEqual(t, "items", res.List().Len(), 1)
	checkStrings(t, "requests", fake.Requests(), []string{
		"GET /shops?limit=1000&q=lob",
		"GET /shops?limit=200&q=lob",
		"GET /shops?limit=100&q=lob",
	})
}

func TestServices_ReplaceGroupVideos(t *testing.T) {
	svc, fake := newTestServices(t, map[string]http.HandlerFunc{
		"POST /group/Front Desk/videos": respond(http.StatusOK, `{}`),
	})

	res := svc.ReplaceGroupVideos(context.Background(), "Front Desk", nil)

	checkBool(t, "OK", res.OK, true)
	checkStringEqual(t, "body", fake.LastBody(), `{"video_names":[]}`)
}

func TestServices_BreakerStates(t *testing.T) {
	svc, _ := newTestServices(t, nil)

	states := svc.BreakerStates()
	checkIntEqual(t, "services", len(states), 5)
	for _, name := range []string{ServiceDevice, ServiceGroup, ServiceShop, ServiceVideo, ServiceLink} {
		checkStringEqual(t, name, states[name], "closed")
	}
}

func TestServices_DeviceLogRequests(t *testing.T) {
	svc, fake := newTestServices(t, map[string]http.HandlerFunc{
		"GET /devices/logs/summary": respond(http.StatusOK, `{"items": [{"mobile_id": "M1", "count": 4}]}`),
		"GET /device/M 1/logs":      respond(http.StatusOK, `[{"id": 1, "log_type": "temperature", "value": 4}]`),
	})

	start := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 1, 0, 0, 0, time.UTC)

	summary := svc.ListDeviceLogSummary(context.Background(), start, end)
	checkBool(t, "summary OK", summary.OK, true)
	checkIntEqual(t, "summary items", summary.List().Len(), 1)

	checkBool(t, "open summary OK", svc.ListDeviceLogSummary(context.Background(), time.Time{}, time.Time{}).OK, true)

	logs := svc.ListDeviceLogs(context.Background(), "M 1", LogQuery{LogType: " temperature ", Limit: 500, Start: start, End: end})
	checkBool(t, "logs OK", logs.OK, true)
	checkIntEqual(t, "log items", logs.List().Len(), 1)

	checkStrings(t, "requests", fake.Requests(), []string{
		"GET /devices/logs/summary?end_date=2026-03-08&start_date=2026-03-01",
		"GET /devices/logs/summary",
		"GET /device/M 1/logs?end_date=2026-03-08&limit=500&log_type=temperature&start_date=2026-03-01",
	})
}
