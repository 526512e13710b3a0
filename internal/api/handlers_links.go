// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/signboard/internal/links"
	"github.com/tomtom215/signboard/internal/liveness"
	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/models"
)

// LinkView is an aggregate with its device's liveness.
type LinkView struct {
	links.AggregateRow
	OnlineStatus liveness.Status `json:"online_status"`
}

// LinksResponse is the body of GET /api/v1/links.
type LinksResponse struct {
	Items    []LinkView `json:"items"`
	Count    int        `json:"count"`
	Total    int        `json:"total"`
	Rows     int        `json:"rows"`
	Dropped  int        `json:"dropped"`
	LoadedAt time.Time  `json:"loaded_at"`
	// Stale is set when the last reload failed and the snapshot is older
	// than the backend's state.
	Stale bool `json:"stale"`
}

func (h *Handler) status() liveness.StatusMap {
	if h.liveness == nil {
		return liveness.StatusMap{}
	}
	return h.liveness.Status()
}

// snapshot returns the current snapshot, writing a 503 when none has loaded.
func (h *Handler) snapshot(w http.ResponseWriter) (*links.Snapshot, bool) {
	snap := h.store.Snapshot()
	if snap == nil || !h.store.Ready() {
		respondError(w, http.StatusServiceUnavailable, CodeNotReady, "links not loaded yet", nil)
		return nil, false
	}
	return snap, true
}

func queryFromRequest(r *http.Request) links.Query {
	q := r.URL.Query()
	return links.Query{
		Device: q.Get("device"),
		Group:  q.Get("group"),
		Shop:   q.Get("shop"),
		Video:  q.Get("video"),
		Q:      q.Get("q"),
	}
}

// Links lists aggregates with liveness, filtered by the q, device, group,
// shop and video query parameters.
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	rows := links.Filter(snap.Aggregates, queryFromRequest(r))
	status := h.status()
	items := make([]LinkView, len(rows))
	for i, row := range rows {
		items[i] = LinkView{AggregateRow: row, OnlineStatus: status.Get(row.MobileID)}
	}

	respondSuccess(w, http.StatusOK, LinksResponse{
		Items:    items,
		Count:    len(items),
		Total:    snap.Total,
		Rows:     snap.Rows,
		Dropped:  snap.Dropped,
		LoadedAt: snap.LoadedAt,
		Stale:    h.store.LastError() != nil,
	}, time.Time{}, true)
}

// LinksSummary returns dashboard counters over the whole snapshot.
func (h *Handler) LinksSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, links.Summarize(snap.Aggregates, h.status()), time.Time{}, true)
}

// CreateLink creates one link through the fallback executor.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var payload models.LinkPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	start := time.Now()
	res := h.backend.CreateLink(r.Context(), payload)
	if !res.OK {
		respondBackendError(w, r, "create_link", res)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("mobile_id", sanitizeLogValue(payload.MobileID)).
		Str("video_name", sanitizeLogValue(payload.VideoName)).
		Msg("Link created")

	h.reloadAfterWrite(r.Context())
	respondSuccess(w, http.StatusCreated, res.Data, start, false)
}

// DeleteLink deletes one link by id.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	start := time.Now()
	res := h.backend.DeleteLink(r.Context(), id)
	if !res.OK {
		respondBackendError(w, r, "delete_link", res)
		return
	}

	logging.Ctx(r.Context()).Info().Str("link_id", sanitizeLogValue(id)).Msg("Link deleted")

	h.reloadAfterWrite(r.Context())
	respondSuccess(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true}, start, false)
}

// findAggregate looks up the aggregate for key in the current snapshot,
// writing a 404 when it is absent.
func (h *Handler) findAggregate(w http.ResponseWriter, key links.Key) (links.AggregateRow, bool) {
	snap, ok := h.snapshot(w)
	if !ok {
		return links.AggregateRow{}, false
	}
	agg, found := links.Find(snap.Aggregates, key)
	if !found {
		respondError(w, http.StatusNotFound, CodeNotFound, ErrAggregateAbsent.Error(), nil)
		return links.AggregateRow{}, false
	}
	return agg, true
}

// respondEdit writes an EditResult. Partial failures return 502 with the
// result as data so the caller sees which writes went through.
func respondEdit(w http.ResponseWriter, res links.EditResult, start time.Time) {
	if res.OK() {
		respondSuccess(w, http.StatusOK, res, start, false)
		return
	}
	respondJSON(w, http.StatusBadGateway, &models.APIResponse{
		Status:   "error",
		Data:     res,
		Metadata: models.Metadata{Timestamp: time.Now().UTC(), QueryTimeMS: time.Since(start).Milliseconds()},
		Error: &models.APIError{
			Code:    CodePartialWrite,
			Message: fmt.Sprintf("%d of %d link changes failed", res.Failed, res.Failed+res.Created+res.Deleted),
			Details: map[string]interface{}{"failures": res.Failures},
		},
	})
}

// EditAggregateVideos replaces the videos of one aggregate. The change is
// applied as a diff: removed videos are deleted first, then new ones are
// created.
func (h *Handler) EditAggregateVideos(w http.ResponseWriter, r *http.Request) {
	var req AggregateVideosRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	agg, ok := h.findAggregate(w, req.Key)
	if !ok {
		return
	}

	start := time.Now()
	res := links.ApplyVideoEdit(r.Context(), h.backend, agg, req.Videos)
	if res.Deleted+res.Created > 0 {
		h.reloadAfterWrite(r.Context())
	}
	respondEdit(w, res, start)
}

// DeleteAggregateLinks deletes every link grouped under one aggregate.
func (h *Handler) DeleteAggregateLinks(w http.ResponseWriter, r *http.Request) {
	var req AggregateKeyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	agg, ok := h.findAggregate(w, req.Key)
	if !ok {
		return
	}

	start := time.Now()
	res := links.DeleteAggregate(r.Context(), h.backend, agg)
	if res.Deleted > 0 {
		h.reloadAfterWrite(r.Context())
	}
	respondEdit(w, res, start)
}
