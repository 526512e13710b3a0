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
	"testing"

	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/models"
)

// fakeLinkAPI records writes in call order and fails the targets listed in
// fail.
type fakeLinkAPI struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeLinkAPI) CreateLink(_ context.Context, p models.LinkPayload) backend.Result {
	return f.call("create " + p.MobileID + "/" + p.GName + "/" + p.ShopName + "/" + p.VideoName)
}

func (f *fakeLinkAPI) DeleteLink(_ context.Context, id string) backend.Result {
	return f.call("delete " + id)
}

func (f *fakeLinkAPI) call(op string) backend.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if f.fail[op] {
		return backend.Result{Status: http.StatusInternalServerError, Message: "boom"}
	}
	return backend.Result{OK: true, Status: http.StatusOK}
}

func testAggregate() AggregateRow {
	aggs, _ := Aggregate([]models.LinkRow{
		row("1", "A", "G", "S", "v1"),
		row("2", "A", "G", "S", "v2"),
		row("3", "A", "G", "S", "v3"),
	})
	return aggs[0]
}

func TestDiffVideos(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		desired    []string
		wantRemove []string
		wantAdd    []string
	}{
		{"unchanged", []string{"v1", "v2", "v3"}, []string{}, []string{}},
		{"reordered", []string{"v3", "v1", "v2"}, []string{}, []string{}},
		{"remove and add", []string{"v1", "v4"}, []string{"2", "3"}, []string{"v4"}},
		{"trim and dedupe", []string{" v1 ", "v4", "v4 ", "", "  "}, []string{"2", "3"}, []string{"v4"}},
		{"clear", nil, []string{"1", "2", "3"}, []string{}},
	}

	agg := testAggregate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			diff := DiffVideos(agg, tt.desired)
			if !reflect.DeepEqual(diff.Remove, tt.wantRemove) {
				t.Errorf("Remove = %v, want %v", diff.Remove, tt.wantRemove)
			}
			if !reflect.DeepEqual(diff.Add, tt.wantAdd) {
				t.Errorf("Add = %v, want %v", diff.Add, tt.wantAdd)
			}
		})
	}
}

func TestDiffVideos_Empty(t *testing.T) {
	t.Parallel()
	if !DiffVideos(testAggregate(), []string{"v2", "v1", "v3"}).Empty() {
		t.Error("expected empty diff")
	}
}

func TestApplyVideoEdit_DeletesBeforeCreates(t *testing.T) {
	t.Parallel()

	api := &fakeLinkAPI{}
	res := ApplyVideoEdit(context.Background(), api, testAggregate(), []string{"v4", "v1", "v5"})

	want := []string{
		"delete 2",
		"delete 3",
		"create A/G/S/v4",
		"create A/G/S/v5",
	}
	if !reflect.DeepEqual(api.calls, want) {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	if res.Deleted != 2 || res.Created != 2 || res.Failed != 0 || !res.OK() {
		t.Errorf("result = %+v", res)
	}
}

func TestApplyVideoEdit_PartialFailure(t *testing.T) {
	t.Parallel()

	api := &fakeLinkAPI{fail: map[string]bool{"delete 2": true, "create A/G/S/v5": true}}
	res := ApplyVideoEdit(context.Background(), api, testAggregate(), []string{"v1", "v4", "v5"})

	if len(api.calls) != 4 {
		t.Errorf("every write should be attempted, calls = %v", api.calls)
	}
	if res.Deleted != 1 || res.Created != 1 || res.Failed != 2 || res.OK() {
		t.Errorf("result = %+v", res)
	}
	if len(res.Failures) != 2 || res.Failures[0].Op != "delete" || res.Failures[0].Target != "2" ||
		res.Failures[1].Op != "create" || res.Failures[1].Target != "v5" {
		t.Errorf("failures = %+v", res.Failures)
	}
	if res.Failures[0].Status != http.StatusInternalServerError || res.Failures[0].Message != "boom" {
		t.Errorf("failure detail = %+v", res.Failures[0])
	}
}

func TestApplyVideoEdit_NoChange(t *testing.T) {
	t.Parallel()

	api := &fakeLinkAPI{}
	res := ApplyVideoEdit(context.Background(), api, testAggregate(), []string{"v1", "v2", "v3"})
	if len(api.calls) != 0 || res.Deleted+res.Created+res.Failed != 0 {
		t.Errorf("expected no writes, calls = %v, result = %+v", api.calls, res)
	}
}

func TestDeleteAggregate(t *testing.T) {
	t.Parallel()

	aggs, _ := Aggregate([]models.LinkRow{
		row("1", "A", "G", "S", "v1"),
		row("2", "A", "G", "S", "v1"),
		row("3", "A", "G", "S", "v2"),
	})
	api := &fakeLinkAPI{fail: map[string]bool{"delete 2": true}}

	res := DeleteAggregate(context.Background(), api, aggs[0])

	if !reflect.DeepEqual(api.calls, []string{"delete 1", "delete 2", "delete 3"}) {
		t.Errorf("calls = %v", api.calls)
	}
	if res.Deleted != 2 || res.Failed != 1 {
		t.Errorf("result = %+v, want 2 deleted 1 failed", res)
	}
}
