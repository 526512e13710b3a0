// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package liveness

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestExtractOnline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{"online true", `{"online": true}`, true},
		{"online false", `{"online": false}`, false},
		{"is_online number", `{"is_online": 1}`, true},
		{"is_online zero", `{"is_online": 0}`, false},
		{"isOnline string", `{"isOnline": "true"}`, true},
		{"status online", `{"status": "Online"}`, true},
		{"status offline", `{"status": "OFFLINE"}`, false},
		{"status numeric string", `{"status": "1"}`, true},
		{"online beats status", `{"online": false, "status": "online"}`, false},
		{"undecided field falls through", `{"online": null, "status": "online"}`, true},
		{"unknown status string", `{"status": "rebooting"}`, false},
		{"number two is not online", `{"online": 2}`, false},
		{"out-of-range number falls through", `{"online": 2, "is_online": true}`, true},
		{"numeric string falls through", `{"online": "2", "status": "online"}`, true},
		{"bare true", `true`, true},
		{"bare string", `"online"`, true},
		{"bare one", `1`, true},
		{"no fields", `{"mobile_id": "M1"}`, false},
		{"empty", ``, false},
		{"garbage", `{not json`, false},
		{"array", `[true]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractOnline([]byte(tt.payload)); got != tt.want {
				t.Errorf("ExtractOnline(%s) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestMergeDoesNotMutate(t *testing.T) {
	t.Parallel()

	old := StatusMap{"M1": Online, "M2": Offline}
	merged := Merge(old, map[string]bool{"M2": true, "M3": false})

	if old["M2"] != Offline {
		t.Error("Merge mutated the old map")
	}
	if _, ok := old["M3"]; ok {
		t.Error("Merge added to the old map")
	}

	want := StatusMap{"M1": Online, "M2": Online, "M3": Offline}
	for id, s := range want {
		if merged.Get(id) != s {
			t.Errorf("merged[%s] = %v, want %v", id, merged.Get(id), s)
		}
	}
	if merged.Get("M9") != Unknown {
		t.Error("unpolled device should be Unknown")
	}
}

func TestStatusMapRetainAndCounts(t *testing.T) {
	t.Parallel()

	m := StatusMap{"M1": Online, "M2": Offline, "M3": Online}
	kept := m.Retain([]string{"M1", "M2", "M4"})

	if len(kept) != 2 {
		t.Fatalf("expected 2 retained entries, got %d", len(kept))
	}
	if _, ok := kept["M3"]; ok {
		t.Error("M3 should have been pruned")
	}

	online, offline, unknown := kept.Counts([]string{"M1", "M2", "M4"})
	if online != 1 || offline != 1 || unknown != 1 {
		t.Errorf("Counts = (%d, %d, %d), want (1, 1, 1)", online, offline, unknown)
	}
}

func TestStatusJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(StatusMap{"M1": Online, "M2": Offline, "M3": Unknown})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["M1"] != "online" || decoded["M2"] != "offline" || decoded["M3"] != "unknown" {
		t.Errorf("unexpected encoding: %s", data)
	}
}
