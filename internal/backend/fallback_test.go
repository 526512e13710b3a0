// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package backend

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/signboard/internal/metrics"
)

// scriptedDoer answers requests from a table keyed by "METHOD path?query".
// Unknown keys answer 404.
type scriptedDoer struct {
	mu      sync.Mutex
	answers map[string]Result
	calls   []string
}

func newScriptedDoer(answers map[string]Result) *scriptedDoer {
	return &scriptedDoer{answers: answers}
}

func (d *scriptedDoer) Name() string { return "scripted" }

func (d *scriptedDoer) Do(_ context.Context, method, path string, params url.Values, _ interface{}) Result {
	key := method + " " + path
	if len(params) > 0 {
		key += "?" + params.Encode()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, key)

	if res, ok := d.answers[key]; ok {
		return res
	}
	return Result{OK: false, Status: http.StatusNotFound, Message: "Not Found"}
}

func (d *scriptedDoer) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func status(code int) Result {
	return Result{OK: code >= 200 && code < 300, Status: code, Message: http.StatusText(code)}
}

func limitParams(limit string) url.Values {
	v := url.Values{}
	v.Set("limit", limit)
	return v
}

var defaultCaps = []int{200, 100, 50}

func TestExecute_AdvanceThenShrink(t *testing.T) {
	doer := newScriptedDoer(map[string]Result{
		"GET /a":            status(http.StatusNotFound),
		"GET /b?limit=1000": status(http.StatusUnprocessableEntity),
		"GET /b?limit=200":  status(http.StatusUnprocessableEntity),
		"GET /b?limit=100":  {OK: true, Status: http.StatusOK, Data: []byte(`[1,2]`)},
		"GET /c":            status(http.StatusOK),
	})
	exec := NewExecutor(doer, defaultCaps)

	res := exec.Execute(context.Background(), "test_advance_shrink", http.MethodGet, []Candidate{
		Path("/a"),
		WithParams("/b", limitParams("1000")),
		Path("/c"),
	}, nil)

	checkBool(t, "OK", res.OK, true)
	checkIntEqual(t, "Status", res.Status, http.StatusOK)
	checkStringEqual(t, "Data", string(res.Data), `[1,2]`)
	checkStrings(t, "calls", doer.Calls(), []string{
		"GET /a",
		"GET /b?limit=1000",
		"GET /b?limit=200",
		"GET /b?limit=100",
	})
}

func TestExecute_NoCandidates(t *testing.T) {
	doer := newScriptedDoer(nil)
	res := NewExecutor(doer, defaultCaps).Execute(context.Background(), "test_empty", http.MethodGet, nil, nil)

	checkBool(t, "OK", res.OK, false)
	checkIntEqual(t, "Status", res.Status, 0)
	checkStringEqual(t, "Message", res.Message, MsgAllFallbacksFailed)
	checkIntEqual(t, "calls", len(doer.Calls()), 0)
}

func TestExecute_ExhaustedReturnsLastFailure(t *testing.T) {
	doer := newScriptedDoer(map[string]Result{
		"GET /a": status(http.StatusNotFound),
		"GET /b": {OK: false, Status: http.StatusMethodNotAllowed, Message: "nope"},
	})

	before := testutil.ToFloat64(metrics.FallbackAttempts.WithLabelValues("test_exhausted", metrics.FallbackExhausted))
	res := NewExecutor(doer, defaultCaps).Execute(context.Background(), "test_exhausted", http.MethodGet, []Candidate{
		Path("/a"), Path("/b"),
	}, nil)
	after := testutil.ToFloat64(metrics.FallbackAttempts.WithLabelValues("test_exhausted", metrics.FallbackExhausted))

	checkBool(t, "OK", res.OK, false)
	checkIntEqual(t, "Status", res.Status, http.StatusMethodNotAllowed)
	checkStringEqual(t, "Message", res.Message, "nope")
	if after-before != 1 {
		t.Errorf("exhausted counter: expected +1, got %+v", after-before)
	}
}

func TestExecute_FatalStatusesStop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		first  Candidate
		answer Result
	}{
		{"unauthorized", Path("/a"), status(http.StatusUnauthorized)},
		{"forbidden", Path("/a"), status(http.StatusForbidden)},
		{"server error", Path("/a"), status(http.StatusInternalServerError)},
		{"422 without limit", Path("/a"), status(http.StatusUnprocessableEntity)},
		{"transport error", Path("/a"), Result{OK: false, Status: 0, Message: "connection refused"}},
		{"breaker open", Path("/a"), Result{OK: false, Status: http.StatusServiceUnavailable, Message: "link service unavailable: circuit breaker open"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doer := newScriptedDoer(map[string]Result{
				"GET /a": tt.answer,
				"GET /b": status(http.StatusOK),
			})
			res := NewExecutor(doer, defaultCaps).Execute(context.Background(), "test_fatal", http.MethodGet, []Candidate{
				tt.first, Path("/b"),
			}, nil)

			checkBool(t, "OK", res.OK, false)
			checkIntEqual(t, "Status", res.Status, tt.answer.Status)
			checkStringEqual(t, "Message", res.Message, tt.answer.Message)
			checkStrings(t, "calls", doer.Calls(), []string{"GET /a"})
		})
	}
}

func TestExecute_ShrinkOnlyBelowRequestedLimit(t *testing.T) {
	doer := newScriptedDoer(map[string]Result{
		"GET /shops?limit=150": status(http.StatusUnprocessableEntity),
		"GET /shops?limit=100": status(http.StatusUnprocessableEntity),
		"GET /shops?limit=50":  status(http.StatusUnprocessableEntity),
		"GET /shops":           status(http.StatusOK),
	})

	res := NewExecutor(doer, defaultCaps).Execute(context.Background(), "test_shrink_below", http.MethodGet, []Candidate{
		WithParams("/shops", limitParams("150")),
	}, nil)

	checkBool(t, "OK", res.OK, true)
	checkStrings(t, "calls", doer.Calls(), []string{
		"GET /shops?limit=150",
		"GET /shops?limit=100",
		"GET /shops?limit=50",
		"GET /shops",
	})
}

func TestExecute_UnparseableLimitTriesAllCaps(t *testing.T) {
	doer := newScriptedDoer(map[string]Result{
		"GET /v?limit=all": status(http.StatusUnprocessableEntity),
		"GET /v?limit=200": status(http.StatusUnprocessableEntity),
		"GET /v?limit=100": status(http.StatusOK),
	})

	res := NewExecutor(doer, defaultCaps).Execute(context.Background(), "test_unparseable", http.MethodGet, []Candidate{
		WithParams("/v", limitParams("all")),
	}, nil)

	checkBool(t, "OK", res.OK, true)
	checkStrings(t, "calls", doer.Calls(), []string{
		"GET /v?limit=all",
		"GET /v?limit=200",
		"GET /v?limit=100",
	})
}

func TestExecute_ShrinkKeepsOtherParams(t *testing.T) {
	params := url.Values{}
	params.Set("limit", "500")
	params.Set("offset", "20")
	params.Set("q", "lobby")

	doer := newScriptedDoer(map[string]Result{
		"GET /g?limit=500&offset=20&q=lobby": status(http.StatusUnprocessableEntity),
		"GET /g?limit=200&offset=20&q=lobby": status(http.StatusOK),
	})

	res := NewExecutor(doer, defaultCaps).Execute(context.Background(), "test_keep_params", http.MethodGet, []Candidate{
		WithParams("/g", params),
	}, nil)

	checkBool(t, "OK", res.OK, true)
	checkIntEqual(t, "calls", len(doer.Calls()), 2)
	checkStringEqual(t, "original limit", params.Get("limit"), "500")
}

func TestExecute_ShrinkAdvancesOn404(t *testing.T) {
	doer := newScriptedDoer(map[string]Result{
		"GET /a?limit=300": status(http.StatusUnprocessableEntity),
		"GET /a?limit=200": status(http.StatusNotFound),
		"GET /b":           status(http.StatusCreated),
	})

	res := NewExecutor(doer, defaultCaps).Execute(context.Background(), "test_shrink_advance", http.MethodGet, []Candidate{
		WithParams("/a", limitParams("300")),
		Path("/b"),
	}, nil)

	checkBool(t, "OK", res.OK, true)
	checkIntEqual(t, "Status", res.Status, http.StatusCreated)
	checkStrings(t, "calls", doer.Calls(), []string{
		"GET /a?limit=300",
		"GET /a?limit=200",
		"GET /b",
	})
}

func TestExecute_ShrinkFatalStops(t *testing.T) {
	doer := newScriptedDoer(map[string]Result{
		"GET /a?limit=300": status(http.StatusUnprocessableEntity),
		"GET /a?limit=200": status(http.StatusBadGateway),
	})

	res := NewExecutor(doer, defaultCaps).Execute(context.Background(), "test_shrink_fatal", http.MethodGet, []Candidate{
		WithParams("/a", limitParams("300")),
		Path("/b"),
	}, nil)

	checkBool(t, "OK", res.OK, false)
	checkIntEqual(t, "Status", res.Status, http.StatusBadGateway)
	checkIntEqual(t, "calls", len(doer.Calls()), 2)
}

func TestExecute_DropParamsFailureIsFatal(t *testing.T) {
	doer := newScriptedDoer(map[string]Result{
		"GET /a?limit=60": status(http.StatusUnprocessableEntity),
		"GET /a?limit=50": status(http.StatusUnprocessableEntity),
		"GET /a":          status(http.StatusUnprocessableEntity),
	})

	res := NewExecutor(doer, defaultCaps).Execute(context.Background(), "test_drop_fatal", http.MethodGet, []Candidate{
		WithParams("/a", limitParams("60")),
		Path("/b"),
	}, nil)

	checkBool(t, "OK", res.OK, false)
	checkIntEqual(t, "Status", res.Status, http.StatusUnprocessableEntity)
	checkStrings(t, "calls", doer.Calls(), []string{
		"GET /a?limit=60",
		"GET /a?limit=50",
		"GET /a",
	})
}

func TestExecute_RecordsOutcomes(t *testing.T) {
	op := "test_outcomes"
	read := func(outcome string) float64 {
		return testutil.ToFloat64(metrics.FallbackAttempts.WithLabelValues(op, outcome))
	}

	doer := newScriptedDoer(map[string]Result{
		"GET /b?limit=1000": status(http.StatusUnprocessableEntity),
		"GET /b?limit=200":  status(http.StatusOK),
	})
	NewExecutor(doer, defaultCaps).Execute(context.Background(), op, http.MethodGet, []Candidate{
		Path("/a"),
		WithParams("/b", limitParams("1000")),
	}, nil)

	if got := read(metrics.FallbackAdvance); got != 1 {
		t.Errorf("advance: expected 1, got %v", got)
	}
	if got := read(metrics.FallbackShrink); got != 1 {
		t.Errorf("shrink: expected 1, got %v", got)
	}
	if got := read(metrics.FallbackSuccess); got != 1 {
		t.Errorf("success: expected 1, got %v", got)
	}
}
