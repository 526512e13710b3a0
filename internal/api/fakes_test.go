// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/links"
	"github.com/tomtom215/signboard/internal/liveness"
	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/models"
	"github.com/tomtom215/signboard/internal/normalize"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "error",
		Format: "console",
		Output: io.Discard,
	})
}

func okResult(data string) backend.Result {
	return backend.Result{OK: true, Status: http.StatusOK, Data: []byte(data)}
}

func failResult(status int, message string) backend.Result {
	return backend.Result{OK: false, Status: status, Message: message}
}

// fakeBackend records calls and answers with scripted Results. A zero
// Result field answers 200 with an empty object.
type fakeBackend struct {
	mu sync.Mutex

	created     []models.LinkPayload
	deleted     []string
	replaced    []string
	uptimeFrom  time.Time
	uptimeTo    time.Time
	tempDays    int
	tempBucket  string
	listParams  backend.ListParams
	logQuery    backend.LogQuery
	logMobile   string
	summaryFrom time.Time
	summaryTo   time.Time

	createResult backend.Result
	deleteFail   map[string]backend.Result
	online       backend.Result
	temperature  backend.Result
	uptime       backend.Result
	downloads    backend.Result
	logSummary   backend.Result
	logs         backend.Result
	catalog      backend.Result
	groupVideos  backend.Result
	breakers     map[string]string

	tempCalls atomic.Int32
}

func orOK(res backend.Result) backend.Result {
	if !res.OK && res.Status == 0 && res.Message == "" {
		return okResult(`{}`)
	}
	return res
}

func (f *fakeBackend) CreateLink(_ context.Context, payload models.LinkPayload) backend.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, payload)
	return orOK(f.createResult)
}

func (f *fakeBackend) DeleteLink(_ context.Context, id string) backend.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	if res, failed := f.deleteFail[id]; failed {
		return res
	}
	return okResult(`{}`)
}

func (f *fakeBackend) GetDeviceOnlineStatus(_ context.Context, _ string) backend.Result {
	return orOK(f.online)
}

func (f *fakeBackend) GetDeviceTemperatureSeries(_ context.Context, _ string, days int, bucket string) backend.Result {
	f.tempCalls.Add(1)
	f.mu.Lock()
	f.tempDays, f.tempBucket = days, bucket
	f.mu.Unlock()
	return orOK(f.temperature)
}

func (f *fakeBackend) GetDeviceUptimeReport(_ context.Context, _ string, start, end time.Time) backend.Result {
	f.mu.Lock()
	f.uptimeFrom, f.uptimeTo = start, end
	f.mu.Unlock()
	return orOK(f.uptime)
}

func (f *fakeBackend) GetDeviceDownloads(_ context.Context, _ string) backend.Result {
	return orOK(f.downloads)
}

func (f *fakeBackend) ListDeviceLogSummary(_ context.Context, start, end time.Time) backend.Result {
	f.mu.Lock()
	f.summaryFrom, f.summaryTo = start, end
	f.mu.Unlock()
	return orOK(f.logSummary)
}

func (f *fakeBackend) ListDeviceLogs(_ context.Context, mobileID string, q backend.LogQuery) backend.Result {
	f.mu.Lock()
	f.logMobile, f.logQuery = mobileID, q
	f.mu.Unlock()
	return orOK(f.logs)
}

func (f *fakeBackend) list(p backend.ListParams) backend.Result {
	f.mu.Lock()
	f.listParams = p
	f.mu.Unlock()
	return orOK(f.catalog)
}

func (f *fakeBackend) ListDevices(_ context.Context, p backend.ListParams) backend.Result {
	return f.list(p)
}

func (f *fakeBackend) ListShops(_ context.Context, p backend.ListParams) backend.Result {
	return f.list(p)
}

func (f *fakeBackend) ListGroups(_ context.Context, p backend.ListParams) backend.Result {
	return f.list(p)
}

func (f *fakeBackend) ListVideos(_ context.Context, p backend.ListParams) backend.Result {
	return f.list(p)
}

func (f *fakeBackend) ListGroupVideos(_ context.Context, _ string) backend.Result {
	return orOK(f.groupVideos)
}

func (f *fakeBackend) ReplaceGroupVideos(_ context.Context, _ string, videos []string) backend.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced = videos
	return okResult(`{}`)
}

func (f *fakeBackend) BreakerStates() map[string]string {
	if f.breakers == nil {
		return map[string]string{"link": "closed"}
	}
	return f.breakers
}

type fakeStore struct {
	snap    *links.Snapshot
	ready   bool
	lastErr error
	reloads atomic.Int32
}

func (s *fakeStore) Snapshot() *links.Snapshot { return s.snap }
func (s *fakeStore) Ready() bool { return s.ready }
func (s *fakeStore) LastError() error { return s.lastErr }

func (s *fakeStore) Reload(context.Context) error {
	s.reloads.Add(1)
	return nil
}

type fakeLiveness struct {
	status   liveness.StatusMap
	lastPoll time.Time
	triggers atomic.Int32
}

func (l *fakeLiveness) Status() liveness.StatusMap { return l.status }
func (l *fakeLiveness) LastPoll() time.Time { return l.lastPoll }
func (l *fakeLiveness) TriggerRefresh() { l.triggers.Add(1) }

func linkRow(id, mobile, group, shop, video string) models.LinkRow {
	return models.LinkRow{
		ID:        normalize.ID(id),
		MobileID:  mobile,
		GName:     group,
		ShopName:  shop,
		VideoName: video,
	}
}

// loadedStore returns a ready store over two aggregates:
// A/Lobby/Main with v1 (id 1) and v2 (id 2), and B/Hall/Annex with v3 (id 3).
func loadedStore() *fakeStore {
	rows := []models.LinkRow{
		linkRow("1", "A", "Lobby", "Main", "v1"),
		linkRow("2", "A", "Lobby", "Main", "v2"),
		linkRow("3", "B", "Hall", "Annex", "v3"),
	}
	rows[0].Temperature = normalize.Some(40)
	aggs, dropped := links.Aggregate(rows)
	return &fakeStore{
		ready: true,
		snap: &links.Snapshot{
			Aggregates: aggs,
			Devices:    links.Devices(aggs),
			Total:      len(rows),
			Rows:       len(rows),
			Dropped:    dropped,
			LoadedAt:   time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		},
	}
}

type testEnv struct {
	handler  *Handler
	router   http.Handler
	backend  *fakeBackend
	store    *fakeStore
	liveness *fakeLiveness
}

func testConfig() *config.Config {
	return &config.Config{
		Telemetry: config.TelemetryConfig{CacheTTL: time.Minute},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"http://allowed.example"},
			RateLimitDisabled: true,
		},
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	env := &testEnv{
		backend:  &fakeBackend{},
		store:    loadedStore(),
		liveness: &fakeLiveness{status: liveness.StatusMap{"A": liveness.Online, "B": liveness.Offline}},
	}
	env.handler = NewHandler(cfg, env.backend, env.store, env.liveness, nil)
	env.handler.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(env.handler.Close)

	env.router = NewRouter(env.handler, NewChiMiddleware(ChiMiddlewareConfigFromSecurity(cfg.Security))).SetupChi()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, rr)
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return env
}

func checkStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rr.Code, want, rr.Body.String())
	}
}

func checkErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	checkStatus(t, rr, status)
	env := decodeEnvelope(t, rr)
	if env.Status != "error" || env.Error == nil || env.Error.Code != code {
		t.Fatalf("envelope = %+v, want error code %s", env, code)
	}
	return env
}
