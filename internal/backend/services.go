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
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/models"
	"github.com/tomtom215/signboard/internal/normalize"
)

// Service names used for logs, metrics and breakers.
const (
	ServiceDevice = "device"
	ServiceGroup  = "group"
	ServiceShop   = "shop"
	ServiceVideo  = "video"
	ServiceLink   = "link"
)

// dateLayout is the date format the uptime report endpoint expects.
const dateLayout = "2006-01-02"

// ListParams are the optional paging and search parameters of catalog lists.
// Zero values are omitted from the request.
type ListParams struct {
	Limit  int
	Offset int
	Q      string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	if q := strings.TrimSpace(p.Q); q != "" {
		v.Set("q", q)
	}
	return v
}

// LogQuery filters a device log request. Zero values are omitted.
type LogQuery struct {
	LogType string
	Limit   int
	Start   time.Time
	End     time.Time
}

func (q LogQuery) values() url.Values {
	v := dateValues(q.Start, q.End)
	if t := strings.TrimSpace(q.LogType); t != "" {
		v.Set("log_type", t)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// dateValues sets start_date and end_date for the non-zero bounds.
func dateValues(start, end time.Time) url.Values {
	v := url.Values{}
	if !start.IsZero() {
		v.Set("start_date", start.Format(dateLayout))
	}
	if !end.IsZero() {
		v.Set("end_date", end.Format(dateLayout))
	}
	return v
}

// LinkPage is a decoded page of link rows.
type LinkPage struct {
	Items []models.LinkRow
	Total int
	// Dropped counts list items that could not be decoded as link rows.
	Dropped int
}

// Services exposes the backend operations Signboard uses. Every operation
// goes through a per-service Client and, where endpoints have drifted, an
// Executor over ordered candidates.
//
// Thread Safety: Safe for concurrent use.
type Services struct {
	clients map[string]*Client

	device *Executor
	group  *Executor
	shop   *Executor
	video  *Executor
	link   *Executor
}

// NewServices builds one client per configured backend.
func NewServices(cfg *config.Config, tokens TokenProvider) *Services {
	if tokens == nil {
		tokens = NewTokenProvider(cfg.HTTPClient)
	}

	s := &Services{clients: make(map[string]*Client, 5)}
	build := func(name, baseURL string) *Executor {
		client := NewClient(ClientConfig{
			Name:          name,
			BaseURL:       baseURL,
			Timeout:       cfg.HTTPClient.Timeout,
			TokenProvider: tokens,
			RateLimit:     rate.Limit(cfg.HTTPClient.RateLimitRPS),
			RateBurst:     cfg.HTTPClient.RateLimitBurst,
			Breaker:       cfg.CircuitBreaker,
		})
		s.clients[name] = client
		return NewExecutor(client, cfg.Pagination.LimitCaps)
	}

	s.device = build(ServiceDevice, cfg.Backends.Device)
	s.group = build(ServiceGroup, cfg.Backends.Group)
	s.shop = build(ServiceShop, cfg.Backends.Shop)
	s.video = build(ServiceVideo, cfg.Backends.Video)
	s.link = build(ServiceLink, cfg.Backends.Link)

	logging.Info().
		Str("device", cfg.Backends.Device).
		Str("group", cfg.Backends.Group).
		Str("shop", cfg.Backends.Shop).
		Str("video", cfg.Backends.Video).
		Str("link", cfg.Backends.Link).
		Ints("limit_caps", cfg.Pagination.LimitCaps).
		Msg("Backend clients initialized")

	return s
}

// BreakerStates returns the circuit breaker state of every backend.
func (s *Services) BreakerStates() map[string]string {
	out := make(map[string]string, len(s.clients))
	for name, c := range s.clients {
		out[name] = c.BreakerState()
	}
	return out
}

// ListLinks fetches a page of link rows. The page is only meaningful when
// the Result is OK.
func (s *Services) ListLinks(ctx context.Context, limit, offset int) (LinkPage, Result) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	res := s.link.Execute(ctx, "list_links", http.MethodGet, []Candidate{
		WithParams("/links", params),
	}, nil)
	if !res.OK {
		return LinkPage{}, res
	}

	list := res.List()
	rows, dropped := normalize.DecodeItems[models.LinkRow](list)
	if rows == nil {
		rows = []models.LinkRow{}
	}
	return LinkPage{Items: rows, Total: list.Total, Dropped: dropped}, res
}

// CreateLink creates one device-group-shop-video link.
func (s *Services) CreateLink(ctx context.Context, payload models.LinkPayload) Result {
	return s.link.Execute(ctx, "create_link", http.MethodPost, []Candidate{
		Path("/link"),
		Path("/links/create"),
		Path("/links"),
	}, payload)
}

// DeleteLink deletes a link by id. An empty id fails without a request.
func (s *Services) DeleteLink(ctx context.Context, id string) Result {
	id = strings.TrimSpace(id)
	if id == "" {
		return Result{OK: false, Status: http.StatusBadRequest, Message: "link id is required"}
	}
	return s.link.Execute(ctx, "delete_link", http.MethodDelete, []Candidate{
		Path("/link/" + url.PathEscape(id)),
	}, nil)
}

// GetDeviceOnlineStatus probes a device's liveness. The status endpoint has
// moved between releases, so three candidates are tried.
func (s *Services) GetDeviceOnlineStatus(ctx context.Context, mobileID string) Result {
	base := "/device/" + url.PathEscape(mobileID)
	return s.link.Execute(ctx, "device_online", http.MethodGet, []Candidate{
		Path(base + "/online"),
		Path(base + "/status"),
		Path(base),
	}, nil)
}

// GetDeviceTemperatureSeries fetches bucketed temperature samples.
func (s *Services) GetDeviceTemperatureSeries(ctx context.Context, mobileID string, days int, bucket string) Result {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))
	params.Set("bucket", bucket)
	return s.link.Execute(ctx, "device_temperature", http.MethodGet, []Candidate{
		WithParams("/device/"+url.PathEscape(mobileID)+"/temperature_series", params),
	}, nil)
}

// GetDeviceUptimeReport fetches the uptime report between two dates.
func (s *Services) GetDeviceUptimeReport(ctx context.Context, mobileID string, start, end time.Time) Result {
	params := url.Values{}
	params.Set("start_date", start.Format(dateLayout))
	params.Set("end_date", end.Format(dateLayout))
	return s.link.Execute(ctx, "device_uptime", http.MethodGet, []Candidate{
		WithParams("/device/"+url.PathEscape(mobileID)+"/uptime_report", params),
	}, nil)
}

// ListDeviceLogSummary fetches per-device log counts between two dates.
// Zero dates leave the range open on that side.
func (s *Services) ListDeviceLogSummary(ctx context.Context, start, end time.Time) Result {
	return s.link.Execute(ctx, "device_log_summary", http.MethodGet, []Candidate{
		WithParams("/devices/logs/summary", dateValues(start, end)),
	}, nil)
}

// ListDeviceLogs fetches the log entries of one device.
func (s *Services) ListDeviceLogs(ctx context.Context, mobileID string, q LogQuery) Result {
	return s.link.Execute(ctx, "device_logs", http.MethodGet, []Candidate{
		WithParams("/device/"+url.PathEscape(mobileID)+"/logs", q.values()),
	}, nil)
}

// GetDeviceDownloads fetches the download state of a device's videos.
func (s *Services) GetDeviceDownloads(ctx context.Context, mobileID string) Result {
	return s.link.Execute(ctx, "device_downloads", http.MethodGet, []Candidate{
		Path("/device/" + url.PathEscape(mobileID) + "/videos/downloads"),
	}, nil)
}

// ListDevices lists registered devices.
func (s *Services) ListDevices(ctx context.Context, p ListParams) Result {
	return s.device.Execute(ctx, "list_devices", http.MethodGet, []Candidate{
		WithParams("/devices", p.values()),
	}, nil)
}

// ListShops lists shops. A 422 on the limit shrinks it, then drops params.
func (s *Services) ListShops(ctx context.Context, p ListParams) Result {
	return s.shop.Execute(ctx, "list_shops", http.MethodGet, []Candidate{
		WithParams("/shops", p.values()),
	}, nil)
}

// ListGroups lists groups.
func (s *Services) ListGroups(ctx context.Context, p ListParams) Result {
	return s.group.Execute(ctx, "list_groups", http.MethodGet, []Candidate{
		WithParams("/groups", p.values()),
	}, nil)
}

// ListVideos lists videos.
func (s *Services) ListVideos(ctx context.Context, p ListParams) Result {
	return s.video.Execute(ctx, "list_videos", http.MethodGet, []Candidate{
		WithParams("/videos", p.values()),
	}, nil)
}

// ListGroupVideos fetches the videos assigned to a group.
func (s *Services) ListGroupVideos(ctx context.Context, gname string) Result {
	return s.link.Execute(ctx, "group_videos", http.MethodGet, []Candidate{
		Path("/group/" + url.PathEscape(gname) + "/videos"),
	}, nil)
}

// ReplaceGroupVideos replaces the videos assigned to a group.
func (s *Services) ReplaceGroupVideos(ctx context.Context, gname string, videos []string) Result {
	if videos == nil {
		videos = []string{}
	}
	return s.link.Execute(ctx, "replace_group_videos", http.MethodPost, []Candidate{
		Path("/group/" + url.PathEscape(gname) + "/videos"),
	}, models.GroupVideosPayload{VideoNames: videos})
}
