// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package links

import (
	"context"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/models"
)

// fakeSource serves a scripted sequence of link pages. The last entry
// repeats once the script is exhausted.
type fakeSource struct {
	mu     sync.Mutex
	pages  [][]models.LinkRow
	fail   []bool
	calls  atomic.Int32
	limits []int
}

func (f *fakeSource) ListLinks(_ context.Context, limit, offset int) (backend.LinkPage, backend.Result) {
	n := int(f.calls.Add(1)) - 1
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)

	i := n
	if i >= len(f.pages) {
		i = len(f.pages) - 1
	}
	if f.fail != nil && f.fail[i] {
		return backend.LinkPage{}, backend.Result{Status: http.StatusBadGateway, Message: "Bad Gateway"}
	}
	rows := f.pages[i]
	return backend.LinkPage{Items: rows, Total: len(rows) + 1, Dropped: 1}, backend.Result{OK: true, Status: http.StatusOK}
}

func TestStoreReload(t *testing.T) {
	t.Parallel()

	src := &fakeSource{pages: [][]models.LinkRow{{
		row("1", "A", "G", "S", "v1"),
		row("2", "A", "G", "S", "v2"),
		row("3", "", "G", "S", "v3"),
		row("4", "B", "G", "S", "v1"),
	}}}
	store := NewStore(src, config.LinksConfig{ListLimit: 500})

	if store.Ready() {
		t.Error("store should not be ready before the first load")
	}

	var changed [][]string
	store.OnDevicesChanged(func(ids []string) { changed = append(changed, ids) })
	var reloads int
	store.OnReload(func(Snapshot) { reloads++ })

	if err := store.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Aggregates) != 2 || snap.Rows != 4 || snap.Total != 5 {
		t.Errorf("snapshot = %d aggregates, %d rows, total %d", len(snap.Aggregates), snap.Rows, snap.Total)
	}
	if snap.Dropped != 2 {
		t.Errorf("dropped = %d, want 1 undecodable + 1 without mobile_id", snap.Dropped)
	}
	if !store.Ready() || store.LastError() != nil {
		t.Errorf("ready = %v, last error = %v", store.Ready(), store.LastError())
	}
	if !reflect.DeepEqual(changed, [][]string{{"A", "B"}}) {
		t.Errorf("device notifications = %v", changed)
	}
	if reloads != 1 {
		t.Errorf("reload notifications = %d, want 1", reloads)
	}
	if src.limits[0] != 500 {
		t.Errorf("list limit = %d, want 500", src.limits[0])
	}

	// Same devices, different videos: no device notification.
	src.pages = append(src.pages, []models.LinkRow{row("9", "B", "G", "S", "v9"), row("8", "A", "G", "S", "v8")})
	if err := store.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(changed) != 1 {
		t.Errorf("unchanged device set should not notify, got %v", changed)
	}
	if reloads != 2 {
		t.Errorf("reload notifications = %d, want 2", reloads)
	}
}

func TestStoreReload_FailureKeepsSnapshot(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		pages: [][]models.LinkRow{{row("1", "A", "G", "S", "v1")}, nil},
		fail:  []bool{false, true},
	}
	store := NewStore(src, config.LinksConfig{})

	if err := store.Reload(context.Background()); err != nil {
		t.Fatalf("first Reload: %v", err)
	}
	before := store.Snapshot()

	if err := store.Reload(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}
	if store.Snapshot() != before {
		t.Error("failed reload must keep the previous snapshot")
	}
	if store.LastError() == nil {
		t.Error("expected LastError to be recorded")
	}
	if !store.Ready() {
		t.Error("a later failure must not clear readiness")
	}
}

func TestStoreStartStop(t *testing.T) {
	t.Parallel()

	src := &fakeSource{pages: [][]models.LinkRow{{row("1", "A", "G", "S", "v1")}}}
	store := NewStore(src, config.LinksConfig{ReloadInterval: time.Hour})

	if err := store.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := store.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}

	waitFor(t, func() bool { return store.Ready() })

	store.TriggerReload()
	waitFor(t, func() bool { return src.calls.Load() >= 2 })

	if err := store.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if store.IsRunning() {
		t.Error("store should not be running after Stop")
	}
	if err := store.Stop(); err == nil {
		t.Error("second Stop should fail")
	}
}

func TestStoreTriggerReloadCoalesces(t *testing.T) {
	t.Parallel()

	store := NewStore(&fakeSource{pages: [][]models.LinkRow{nil}}, config.LinksConfig{})
	store.TriggerReload()
	store.TriggerReload()
	store.TriggerReload()
	if got := len(store.reloadCh); got != 1 {
		t.Errorf("pending reloads = %d, want 1", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStoreReloadNotifiesEverySubscriber(t *testing.T) {
	t.Parallel()

	src := &fakeSource{pages: [][]models.LinkRow{{row("1", "A", "G", "S", "v1")}}}
	store := NewStore(src, config.LinksConfig{})

	var devicesA, devicesB, reloadsA, reloadsB, late int
	store.OnDevicesChanged(func([]string) { devicesA++ })
	store.OnDevicesChanged(func(ids []string) {
		devicesB++
		if !reflect.DeepEqual(ids, []string{"A"}) {
			t.Errorf("device set = %v, want [A]", ids)
		}
	})
	store.OnReload(func(Snapshot) { reloadsA++ })
	store.OnReload(func(snap Snapshot) {
		reloadsB++
		// Registering from inside a callback must not deadlock.
		store.OnReload(func(Snapshot) { late++ })
		if len(snap.Aggregates) != 1 {
			t.Errorf("snapshot aggregates = %d, want 1", len(snap.Aggregates))
		}
	})

	if err := store.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if devicesA != 1 || devicesB != 1 {
		t.Errorf("device notifications = %d/%d, want 1/1", devicesA, devicesB)
	}
	if reloadsA != 1 || reloadsB != 1 {
		t.Errorf("reload notifications = %d/%d, want 1/1", reloadsA, reloadsB)
	}
	if late != 0 {
		t.Errorf("subscriber added mid-reload was called %d times, want 0", late)
	}

	if err := store.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if reloadsA != 2 || reloadsB != 2 || late != 1 {
		t.Errorf("second reload notifications = %d/%d late %d, want 2/2 late 1", reloadsA, reloadsB, late)
	}
}
