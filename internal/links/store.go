// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package links

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/metrics"
)

const logComponent = "links"

// Source lists link rows.
type Source interface {
	ListLinks(ctx context.Context, limit, offset int) (backend.LinkPage, backend.Result)
}

// Snapshot is one loaded view of the link service. It is immutable once
// published.
type Snapshot struct {
	Aggregates []AggregateRow `json:"aggregates"`
	Devices    []string       `json:"devices"`
	// Total is the backend's reported total, which may exceed the rows
	// fetched when the list limit truncates.
	Total    int       `json:"total"`
	Rows     int       `json:"rows"`
	Dropped  int       `json:"dropped"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Store keeps the latest aggregate snapshot, reloading it on an interval
// and on demand.
//
// A failed reload keeps the previous snapshot and records the error.
// Subscribers registered with OnDevicesChanged are called when the distinct
// device set differs from the previous snapshot's.
type Store struct {
	src Source
	cfg config.LinksConfig

	mu         sync.RWMutex
	running    bool
	stopChan   chan struct{}
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	lastErr    error
	reloadSubs []func(Snapshot)
	deviceSubs []func([]string)

	// reloadMu serializes Reload.
	reloadMu sync.Mutex
	snapshot atomic.Pointer[Snapshot]
	ready    atomic.Bool
	reloadCh chan struct{}
}

// NewStore creates a Store with an empty snapshot. It does not load until
// Start or Reload.
func NewStore(src Source, cfg config.LinksConfig) *Store {
	if cfg.ReloadInterval <= 0 {
		cfg.ReloadInterval = 30 * time.Second
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 1000
	}
	s := &Store{
		src:      src,
		cfg:      cfg,
		stopChan: make(chan struct{}),
		reloadCh: make(chan struct{}, 1),
	}
	s.snapshot.Store(&Snapshot{Aggregates: []AggregateRow{}, Devices: []string{}})
	return s
}

// Start begins the reload loop. The first load runs immediately.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("links store is already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	logging.WithComponent(ctx, logComponent).Info().
		Dur("interval", s.cfg.ReloadInterval).
		Int("list_limit", s.cfg.ListLimit).
		Msg("Starting links store")

	s.wg.Add(1)
	go s.reloadLoop(loopCtx, s.stopChan)

	return nil
}

// Stop cancels any in-flight load and waits for the loop to exit.
func (s *Store) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("links store is not running")
	}
	s.running = false
	s.cancel()
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	logging.WithComponent(context.Background(), logComponent).Info().Msg("Links store stopped")
	return nil
}

// IsRunning returns whether the reload loop is active.
func (s *Store) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (s *Store) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Ready reports whether at least one load has succeeded.
func (s *Store) Ready() bool {
	return s.ready.Load()
}

// LastError returns the error of the most recent load, nil if it succeeded.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// OnReload registers fn to receive every published snapshot. fn runs on the
// reloading goroutine and must not block.
func (s *Store) OnReload(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadSubs = append(s.reloadSubs, fn)
}

// OnDevicesChanged registers fn to receive the device set whenever it
// changes. fn must not block.
func (s *Store) OnDevicesChanged(fn func([]string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceSubs = append(s.deviceSubs, fn)
}

// TriggerReload requests a load as soon as the loop is free. Requests
// arriving while one is pending are coalesced.
func (s *Store) TriggerReload() {
	select {
	case s.reloadCh <- struct{}{}:
	default:
	}
}

// Reload fetches the links and publishes a new snapshot. Concurrent calls
// are serialized.
func (s *Store) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	page, res := s.src.ListLinks(ctx, s.cfg.ListLimit, 0)
	if !res.OK {
		err := fmt.Errorf("failed to list links: %w", res.Err())
		s.setLastErr(err)
		metrics.RecordLinksReload(time.Since(start), 0, 0, err)
		logging.WithComponent(ctx, logComponent).Warn().Err(err).Msg("Links reload failed, keeping previous snapshot")
		return err
	}

	aggregates, skipped := Aggregate(page.Items)
	next := &Snapshot{
		Aggregates: aggregates,
		Devices:    Devices(aggregates),
		Total:      page.Total,
		Rows:       len(page.Items),
		Dropped:    page.Dropped + skipped,
		LoadedAt:   time.Now(),
	}

	prev := s.snapshot.Swap(next)
	s.ready.Store(true)
	s.setLastErr(nil)
	metrics.RecordLinksReload(time.Since(start), len(aggregates), next.Dropped, nil)

	logging.WithComponent(ctx, logComponent).Debug().
		Int("rows", next.Rows).
		Int("total", next.Total).
		Int("aggregates", len(aggregates)).
		Int("dropped", next.Dropped).
		Msg("Links reloaded")

	s.mu.RLock()
	reloadSubs := slices.Clone(s.reloadSubs)
	deviceSubs := slices.Clone(s.deviceSubs)
	s.mu.RUnlock()

	if !sameDevices(prev.Devices, next.Devices) {
		for _, fn := range deviceSubs {
			fn(append([]string(nil), next.Devices...))
		}
	}
	for _, fn := range reloadSubs {
		fn(*next)
	}
	return nil
}

func (s *Store) setLastErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Store) reloadLoop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	s.load(ctx)

	ticker := time.NewTicker(s.cfg.ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.load(ctx)
		case <-s.reloadCh:
			s.load(ctx)
		}
	}
}

func (s *Store) load(ctx context.Context) {
	// Errors are recorded by Reload and surfaced through LastError.
	_ = s.Reload(logging.ContextWithNewCorrelationID(ctx))
}

func sameDevices(a, b []string) bool {
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
