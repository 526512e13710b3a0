// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package telemetry

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/signboard/internal/models"
	"github.com/tomtom215/signboard/internal/normalize"
)

// MaxRecentSessions caps the session list of an UptimeView.
const MaxRecentSessions = 100

// sessionState is the reducer state of DeriveSessions.
type sessionState int8

const (
	stateUnknown sessionState = iota
	stateOnline
	stateOffline
)

func (s sessionState) sessionType() string {
	if s == stateOnline {
		return models.SessionOnline
	}
	return models.SessionOffline
}

func stateOf(online bool) sessionState {
	if online {
		return stateOnline
	}
	return stateOffline
}

// sortedEvents returns the events with a timestamp, oldest first.
func sortedEvents(events []models.StatusEvent) []models.StatusEvent {
	out := make([]models.StatusEvent, 0, len(events))
	for _, e := range events {
		if !e.Timestamp.IsZero() {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp.Time) })
	return out
}

// DeriveSessions reduces raw status events into contiguous sessions. Each
// state change closes the open session at the event time. Repeated events
// in the same state extend the open session. The last session is ongoing
// and measured up to now.
func DeriveSessions(events []models.StatusEvent, now time.Time) []models.Session {
	var (
		sessions []models.Session
		state    = stateUnknown
		start    time.Time
	)

	for _, e := range sortedEvents(events) {
		next := stateOf(e.Online)
		switch {
		case state == stateUnknown:
			state, start = next, e.Timestamp.Time
		case next == state:
		default:
			end := e.Timestamp.Time
			sessions = append(sessions, models.Session{
				Type:            state.sessionType(),
				Start:           normalize.Timestamp{Time: start},
				End:             normalize.Timestamp{Time: end},
				DurationSeconds: end.Sub(start).Seconds(),
			})
			state, start = next, end
		}
	}

	if state != stateUnknown {
		sessions = append(sessions, models.Session{
			Type:            state.sessionType(),
			Start:           normalize.Timestamp{Time: start},
			Ongoing:         true,
			DurationSeconds: math.Max(0, now.Sub(start).Seconds()),
		})
	}
	return sessions
}

// UptimeSeries maps status events to 1 (online) and 0 (offline) samples so
// Transform can draw them.
func UptimeSeries(events []models.StatusEvent) []Point {
	sorted := sortedEvents(events)
	points := make([]Point, len(sorted))
	for i, e := range sorted {
		v := 0.0
		if e.Online {
			v = 1
		}
		points[i] = Point{T: e.Timestamp.Time, V: v}
	}
	return points
}

// SessionView is a session with its formatted duration.
type SessionView struct {
	models.Session
	Duration string `json:"duration"`
}

// UptimeView is the render-ready form of an uptime report.
type UptimeView struct {
	TotalOnlineSeconds  float64       `json:"total_online_seconds"`
	TotalOfflineSeconds float64       `json:"total_offline_seconds"`
	TotalOnline         string        `json:"total_online"`
	TotalOffline        string        `json:"total_offline"`
	OnlinePercentage    float64       `json:"online_percentage"`
	OfflinePercentage   float64       `json:"offline_percentage"`
	TotalOnlineEvents   int           `json:"total_online_events"`
	SessionCount        int           `json:"session_count"`
	Sessions            []SessionView `json:"sessions"`
	Derived             bool          `json:"derived"`
	Chart               *Chart        `json:"chart,omitempty"`
}

// BuildUptimeView prepares a report for display. Sessions come from the
// report, or are derived from its raw events when the backend sent none;
// derived sessions also provide the totals. The session list is newest
// first and capped at MaxRecentSessions.
func BuildUptimeView(report models.UptimeReport, now time.Time) UptimeView {
	view := UptimeView{
		TotalOnlineSeconds:  report.TotalOnlineSeconds,
		TotalOfflineSeconds: report.TotalOfflineSeconds,
		OnlinePercentage:    report.OnlinePercentage,
		TotalOnlineEvents:   report.TotalOnlineEvents,
	}

	sessions := report.Sessions
	if len(sessions) == 0 && len(report.Events) > 0 {
		sessions = DeriveSessions(report.Events, now)
		view.Derived = true
		view.TotalOnlineSeconds, view.TotalOfflineSeconds, view.TotalOnlineEvents = sessionTotals(sessions)
		if total := view.TotalOnlineSeconds + view.TotalOfflineSeconds; total > 0 {
			view.OnlinePercentage = view.TotalOnlineSeconds / total * 100
		}
	}

	if len(sessions) > 0 || view.TotalOnlineSeconds+view.TotalOfflineSeconds > 0 {
		view.OfflinePercentage = 100 - view.OnlinePercentage
	}
	view.TotalOnline = FormatDuration(view.TotalOnlineSeconds)
	view.TotalOffline = FormatDuration(view.TotalOfflineSeconds)
	view.SessionCount = len(sessions)
	view.Sessions = recentSessions(sessions)

	if chart, ok := Transform(UptimeSeries(report.Events)); ok {
		view.Chart = &chart
	}
	return view
}

func sessionTotals(sessions []models.Session) (online, offline float64, onlineEvents int) {
	for _, s := range sessions {
		if s.Type == models.SessionOnline {
			online += s.DurationSeconds
			onlineEvents++
		} else {
			offline += s.DurationSeconds
		}
	}
	return online, offline, onlineEvents
}

func recentSessions(sessions []models.Session) []SessionView {
	ordered := append([]models.Session(nil), sessions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.After(ordered[j].Start.Time)
	})
	if len(ordered) > MaxRecentSessions {
		ordered = ordered[:MaxRecentSessions]
	}

	out := make([]SessionView, len(ordered))
	for i, s := range ordered {
		out[i] = SessionView{Session: s, Duration: FormatDuration(s.DurationSeconds)}
	}
	return out
}

// FormatDuration renders seconds as Xs, Xm Ys, Xh Ym or Xd Yh. Negative
// and non-finite input renders as 0s.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0s"
	}

	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", int64(math.Round(seconds)))
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", int64(seconds/60), int64(math.Round(math.Mod(seconds, 60))))
	case seconds < 86400:
		return fmt.Sprintf("%dh %dm", int64(seconds/3600), int64(math.Mod(seconds, 3600)/60))
	default:
		return fmt.Sprintf("%dd %dh", int64(seconds/86400), int64(math.Mod(seconds, 86400)/3600))
	}
}
