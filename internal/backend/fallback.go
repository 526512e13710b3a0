// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/metrics"
)

// Candidate is one endpoint an operation may be served by.
type Candidate struct {
	Path   string
	Params url.Values
}

// Path returns a Candidate without query parameters.
func Path(path string) Candidate {
	return Candidate{Path: path}
}

// WithParams returns a Candidate with query parameters.
func WithParams(path string, params url.Values) Candidate {
	return Candidate{Path: path, Params: params}
}

// Doer performs a single backend request.
type Doer interface {
	Name() string
	Do(ctx context.Context, method, path string, params url.Values, body interface{}) Result
}

// Executor calls an operation's candidate endpoints in order until one
// succeeds or a failure makes further attempts pointless.
//
// Classification of a failed attempt:
//   - 404/405: the endpoint does not exist here; try the next candidate
//   - 422 on a request carrying limit: retry the same candidate with each
//     smaller limit cap, then once with no parameters at all
//   - anything else (401, 403, 5xx, transport errors, 422 without limit):
//     fatal, returned immediately
//
// Attempts are strictly sequential. Candidates may create resources, so
// trying them in parallel could duplicate writes.
type Executor struct {
	client Doer
	caps   []int
}

// NewExecutor creates an Executor. caps is the strictly descending sequence
// of limits tried after a 422.
func NewExecutor(client Doer, caps []int) *Executor {
	return &Executor{
		client: client,
		caps:   append([]int(nil), caps...),
	}
}

// attemptClass is the outcome of classifying a failed attempt.
type attemptClass int

const (
	classFatal attemptClass = iota
	classAdvance
	classShrink
)

func classify(res Result, params url.Values) attemptClass {
	switch res.Status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return classAdvance
	case http.StatusUnprocessableEntity:
		if params.Has("limit") {
			return classShrink
		}
	}
	return classFatal
}

// Execute runs op against candidates in order. It never returns a Go error;
// the returned Result is either the first success, the first fatal failure,
// or the last failure recorded once every candidate was exhausted.
func (e *Executor) Execute(ctx context.Context, op, method string, candidates []Candidate, body interface{}) Result {
	last := Result{OK: false, Status: 0, Message: MsgAllFallbacksFailed}

	for _, cand := range candidates {
		res := e.attempt(ctx, op, method, cand.Path, cand.Params, body)
		if res.OK {
			e.record(ctx, op, cand, res, metrics.FallbackSuccess)
			return res
		}

		switch classify(res, cand.Params) {
		case classAdvance:
			e.record(ctx, op, cand, res, metrics.FallbackAdvance)
			last = res
			continue
		case classShrink:
			e.record(ctx, op, cand, res, metrics.FallbackShrink)
			final, advance := e.shrink(ctx, op, method, cand, body)
			if !advance {
				return final
			}
			last = final
			continue
		default:
			e.record(ctx, op, cand, res, metrics.FallbackFatal)
			return res
		}
	}

	metrics.RecordFallbackAttempt(op, metrics.FallbackExhausted)
	logging.Ctx(ctx).Debug().
		Str("service", e.client.Name()).
		Str("operation", op).
		Int("status", last.Status).
		Msg("All fallback candidates exhausted")
	return last
}

// shrink retries cand with each cap below the requested limit, then once
// with no parameters. advance reports whether the caller should move on to
// the next candidate with final as the best-known failure.
func (e *Executor) shrink(ctx context.Context, op, method string, cand Candidate, body interface{}) (final Result, advance bool) {
	for _, limit := range e.capsBelow(cand.Params.Get("limit")) {
		params := cloneValues(cand.Params)
		params.Set("limit", strconv.Itoa(limit))

		res := e.attempt(ctx, op, method, cand.Path, params, body)
		capped := Candidate{Path: cand.Path, Params: params}
		if res.OK {
			e.record(ctx, op, capped, res, metrics.FallbackSuccess)
			return res, false
		}

		switch classify(res, params) {
		case classAdvance:
			e.record(ctx, op, capped, res, metrics.FallbackAdvance)
			return res, true
		case classShrink:
			e.record(ctx, op, capped, res, metrics.FallbackShrink)
			continue
		default:
			e.record(ctx, op, capped, res, metrics.FallbackFatal)
			return res, false
		}
	}

	bare := Path(cand.Path)
	res := e.attempt(ctx, op, method, bare.Path, nil, body)
	if res.OK {
		e.record(ctx, op, bare, res, metrics.FallbackDropParams)
		return res, false
	}
	if classify(res, nil) == classAdvance {
		e.record(ctx, op, bare, res, metrics.FallbackAdvance)
		return res, true
	}
	e.record(ctx, op, bare, res, metrics.FallbackFatal)
	return res, false
}

// capsBelow returns the caps strictly smaller than the requested limit. An
// unparseable limit gets every cap.
func (e *Executor) capsBelow(requested string) []int {
	n, err := strconv.Atoi(requested)
	if err != nil {
		return e.caps
	}
	out := make([]int, 0, len(e.caps))
	for _, c := range e.caps {
		if c < n {
			out = append(out, c)
		}
	}
	return out
}

func (e *Executor) attempt(ctx context.Context, op, method, path string, params url.Values, body interface{}) Result {
	return e.client.Do(ctx, method, path, params, body)
}

func (e *Executor) record(ctx context.Context, op string, cand Candidate, res Result, outcome string) {
	metrics.RecordFallbackAttempt(op, outcome)

	event := logging.Ctx(ctx).Debug()
	if outcome == metrics.FallbackFatal {
		event = logging.Ctx(ctx).Warn()
	}
	event.
		Str("service", e.client.Name()).
		Str("operation", op).
		Str("path", cand.Path).
		Str("params", cand.Params.Encode()).
		Int("status", res.Status).
		Str("outcome", outcome).
		Str("message", res.Message).
		Msg("Fallback attempt")
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
