// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/normalize"
)

// deviceNameKeys are the fields a device list item may carry its id in.
var deviceNameKeys = []string{"mobile_id", "id", "name"}

// CatalogResponse is a list of names from one catalog service.
type CatalogResponse struct {
	Kind  string   `json:"kind"`
	Items []string `json:"items"`
	Count int      `json:"count"`
	Total int      `json:"total"`
}

type catalogSource struct {
	list func(ctx context.Context, p backend.ListParams) backend.Result
	keys []string
}

func (h *Handler) catalogSources() map[string]catalogSource {
	return map[string]catalogSource{
		"shops":   {list: h.backend.ListShops, keys: normalize.ShopNameKeys},
		"groups":  {list: h.backend.ListGroups, keys: normalize.GroupNameKeys},
		"videos":  {list: h.backend.ListVideos, keys: normalize.VideoNameKeys},
		"devices": {list: h.backend.ListDevices, keys: deviceNameKeys},
	}
}

// Catalog lists the names of shops, groups, videos or devices.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	req := CatalogRequest{
		Kind:   strings.ToLower(chi.URLParam(r, "kind")),
		Limit:  getIntParam(r, "limit", 0),
		Offset: getIntParam(r, "offset", 0),
		Q:      r.URL.Query().Get("q"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		status := http.StatusBadRequest
		if apiErr.Details["field"] == "kind" {
			status = http.StatusNotFound
			apiErr.Code = CodeNotFound
			apiErr.Message = ErrUnknownCatalog.Error()
		}
		respondAPIError(w, status, apiErr)
		return
	}

	src := h.catalogSources()[req.Kind]
	start := time.Now()
	res := src.list(r.Context(), backend.ListParams{Limit: req.Limit, Offset: req.Offset, Q: req.Q})
	if !res.OK {
		respondBackendError(w, r, "list_"+req.Kind, res)
		return
	}

	list := res.List()
	names := normalize.Names(list, src.keys...)
	if names == nil {
		names = []string{}
	}
	respondSuccess(w, http.StatusOK, CatalogResponse{
		Kind:  req.Kind,
		Items: names,
		Count: len(names),
		Total: list.Total,
	}, start, false)
}

// GroupVideos lists the videos assigned to a group.
func (h *Handler) GroupVideos(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "group name is required", nil)
		return
	}

	start := time.Now()
	res := h.backend.ListGroupVideos(r.Context(), name)
	if !res.OK {
		respondBackendError(w, r, "list_group_videos", res)
		return
	}

	names := normalize.Names(res.List(), normalize.VideoNameKeys...)
	if names == nil {
		names = []string{}
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"gname":  name,
		"videos": names,
	}, start, false)
}

// ReplaceGroupVideos sets the video list of a group.
func (h *Handler) ReplaceGroupVideos(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "group name is required", nil)
		return
	}
	var req GroupVideosRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	start := time.Now()
	res := h.backend.ReplaceGroupVideos(r.Context(), name, req.Videos)
	if !res.OK {
		respondBackendError(w, r, "replace_group_videos", res)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("gname", sanitizeLogValue(name)).
		Int("videos", len(req.Videos)).
		Msg("Group videos replaced")

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"gname":  name,
		"videos": req.Videos,
	}, start, false)
}

// LivenessRefresh requests a liveness batch. Requests arriving while one is
// pending coalesce.
func (h *Handler) LivenessRefresh(w http.ResponseWriter, r *http.Request) {
	if h.liveness == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "liveness poller not available", nil)
		return
	}
	h.liveness.TriggerRefresh()
	respondSuccess(w, http.StatusAccepted, map[string]interface{}{"triggered": true}, time.Time{}, false)
}
