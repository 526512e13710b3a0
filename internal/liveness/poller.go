// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package liveness

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/metrics"
)

// Trigger sources, used as the metrics label.
const (
	TriggerDevices  = "devices"
	TriggerInterval = "interval"
	TriggerManual   = "manual"
)

const logComponent = "liveness"

// StatusAPI probes a single device.
type StatusAPI interface {
	GetDeviceOnlineStatus(ctx context.Context, mobileID string) backend.Result
}

// Poller polls the liveness of every known device.
//
// One loop goroutine runs batches one at a time. A batch fans out one
// request per device, waits for all of them to settle and merges the
// results once into a new StatusMap, which is then published atomically.
//
// Refresh triggers (device set change, interval, TriggerRefresh) are
// coalesced through a 1-slot channel: a trigger arriving while one is
// already pending is dropped.
type Poller struct {
	api StatusAPI
	cfg config.LivenessConfig

	mu          sync.RWMutex
	running     bool
	devices     []string
	subscribers []func(StatusMap)
	stopChan    chan struct{}
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	// publishMu serializes read-merge-publish of the status snapshot.
	publishMu sync.Mutex
	status    atomic.Pointer[StatusMap]
	stale     atomic.Bool
	lastPoll  atomic.Int64
	refreshCh chan struct{}
}

// NewPoller creates a Poller. It does nothing until Start.
func NewPoller(api StatusAPI, cfg config.LivenessConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	p := &Poller{
		api:       api,
		cfg:       cfg,
		stopChan:  make(chan struct{}),
		refreshCh: make(chan struct{}, 1),
	}
	empty := StatusMap{}
	p.status.Store(&empty)
	return p
}

// Start begins the polling loop. The first batch runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("liveness poller is already running")
	}
	p.running = true
	p.stopChan = make(chan struct{})
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.stale.Store(false)
	p.mu.Unlock()

	logging.WithComponent(ctx, logComponent).Info().
		Dur("interval", p.cfg.Interval).
		Int("max_concurrency", p.cfg.MaxConcurrency).
		Msg("Starting liveness poller")

	p.wg.Add(1)
	go p.pollLoop(loopCtx, p.stopChan)

	return nil
}

// Stop marks the poller stale, cancels any in-flight batch and waits for
// the loop to exit. A batch that settles after Stop is discarded.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("liveness poller is not running")
	}
	p.running = false
	p.stale.Store(true)
	p.cancel()
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	logging.WithComponent(context.Background(), logComponent).Info().Msg("Liveness poller stopped")
	return nil
}

// IsRunning returns whether the poller is active.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// SetDevices replaces the polled device set. Ids are trimmed and
// deduplicated in order. When the set changes, departed devices are pruned
// from the published map and a refresh is triggered.
func (p *Poller) SetDevices(ids []string) {
	next := dedupe(ids)

	p.mu.Lock()
	if sameSet(p.devices, next) {
		p.mu.Unlock()
		return
	}
	p.devices = next
	p.mu.Unlock()

	p.publishMu.Lock()
	p.publish(p.Status().Retain(next))
	p.publishMu.Unlock()
	logging.WithComponent(context.Background(), logComponent).Debug().Int("devices", len(next)).Msg("Liveness device set changed")
	p.trigger(TriggerDevices)
}

// Devices returns a copy of the polled device set.
func (p *Poller) Devices() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.devices...)
}

// TriggerRefresh requests a batch as soon as the loop is free.
func (p *Poller) TriggerRefresh() {
	p.trigger(TriggerManual)
}

// Status returns the current published snapshot. Callers must not modify it.
func (p *Poller) Status() StatusMap {
	return *p.status.Load()
}

// LastPoll returns the completion time of the last merged batch.
func (p *Poller) LastPoll() time.Time {
	ns := p.lastPoll.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// OnUpdate registers fn to receive every published snapshot. fn runs on the
// poller's goroutine and must not block.
func (p *Poller) OnUpdate(fn func(StatusMap)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

func (p *Poller) trigger(source string) {
	select {
	case p.refreshCh <- struct{}{}:
		metrics.RecordLivenessTrigger(source, false)
	default:
		metrics.RecordLivenessTrigger(source, true)
	}
}

func (p *Poller) pollLoop(ctx context.Context, stop <-chan struct{}) {
	defer p.wg.Done()

	p.poll(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			metrics.RecordLivenessTrigger(TriggerInterval, false)
			p.poll(ctx)
		case <-p.refreshCh:
			p.poll(ctx)
		}
	}
}

// poll runs one batch over the current device set.
func (p *Poller) poll(ctx context.Context) {
	devices := p.Devices()
	if len(devices) == 0 {
		return
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	start := time.Now()

	results := make([]bool, len(devices))
	var failures atomic.Int32

	var g errgroup.Group
	if p.cfg.MaxConcurrency > 0 {
		g.SetLimit(p.cfg.MaxConcurrency)
	}
	for i, id := range devices {
		g.Go(func() error {
			online, ok := p.probe(ctx, id)
			if !ok {
				failures.Add(1)
			}
			results[i] = online
			return nil
		})
	}
	_ = g.Wait()

	duration := time.Since(start)
	metrics.RecordLivenessBatch(duration, len(devices), int(failures.Load()))

	if p.stale.Load() || ctx.Err() != nil {
		logging.WithComponent(ctx, logComponent).Debug().Int("devices", len(devices)).Msg("Discarding liveness batch from stopped poller")
		return
	}

	batch := make(map[string]bool, len(devices))
	for i, id := range devices {
		batch[id] = results[i]
	}
	p.publishMu.Lock()
	merged := Merge(p.Status(), batch).Retain(p.Devices())
	p.lastPoll.Store(time.Now().UnixNano())
	p.publish(merged)
	p.publishMu.Unlock()

	online, offline, _ := merged.Counts(devices)
	logging.WithComponent(ctx, logComponent).Debug().
		Int("devices", len(devices)).
		Int("online", online).
		Int("offline", offline).
		Int32("failures", failures.Load()).
		Dur("duration", duration).
		Msg("Liveness batch merged")
}

// probe fetches one device's status. Any failure reads as offline.
func (p *Poller) probe(ctx context.Context, id string) (online, ok bool) {
	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}

	res := p.api.GetDeviceOnlineStatus(ctx, id)
	if !res.OK {
		logging.WithComponent(ctx, logComponent).Debug().
			Str("mobile_id", id).
			Int("status", res.Status).
			Str("message", res.Message).
			Msg("Device status probe failed")
		return false, false
	}
	return ExtractOnline(res.Data), true
}

func (p *Poller) publish(m StatusMap) {
	p.status.Store(&m)

	p.mu.RLock()
	subscribers := slices.Clone(p.subscribers)
	devices := p.devices
	p.mu.RUnlock()

	metrics.UpdateLivenessGauges(m.Counts(devices))
	for _, fn := range subscribers {
		fn(m)
	}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
