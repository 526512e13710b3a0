// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package links

import (
	"context"
	"strings"

	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/models"
)

// LinkAPI is the subset of the link service the aggregator writes through.
type LinkAPI interface {
	CreateLink(ctx context.Context, payload models.LinkPayload) backend.Result
	DeleteLink(ctx context.Context, id string) backend.Result
}

// Diff is the set of link changes that turns an aggregate's videos into a
// desired list.
type Diff struct {
	// Remove holds link ids to delete, in the aggregate's video order.
	Remove []string `json:"remove"`
	// Add holds video names to link, in desired order.
	Add []string `json:"add"`
}

// Empty reports whether the diff changes nothing.
func (d Diff) Empty() bool {
	return len(d.Remove) == 0 && len(d.Add) == 0
}

// Failure describes one write that did not succeed.
type Failure struct {
	Op      string `json:"op"`
	Target  string `json:"target"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// EditResult counts the outcome of a batch of link writes.
type EditResult struct {
	Deleted  int       `json:"deleted"`
	Created  int       `json:"created"`
	Failed   int       `json:"failed"`
	Failures []Failure `json:"failures,omitempty"`
}

// OK reports whether every write succeeded.
func (r EditResult) OK() bool {
	return r.Failed == 0
}

// DiffVideos compares an aggregate's videos with the desired list. Desired
// names are trimmed; empty names are dropped and duplicates collapse.
func DiffVideos(agg AggregateRow, desired []string) Diff {
	want := make(map[string]struct{}, len(desired))
	diff := Diff{Remove: []string{}, Add: []string{}}

	for _, name := range desired {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := want[name]; dup {
			continue
		}
		want[name] = struct{}{}
		if _, have := agg.IDByVideo[name]; !have {
			diff.Add = append(diff.Add, name)
		}
	}

	for _, video := range agg.Videos {
		if _, keep := want[video]; keep {
			continue
		}
		if id, ok := agg.IDByVideo[video]; ok && id != "" {
			diff.Remove = append(diff.Remove, id)
		}
	}

	return diff
}

// ApplyVideoEdit makes the aggregate's videos match desired. All deletes run
// before any create, one request at a time. A failed write is recorded and
// the rest still run.
func ApplyVideoEdit(ctx context.Context, api LinkAPI, agg AggregateRow, desired []string) EditResult {
	diff := DiffVideos(agg, desired)
	var out EditResult

	for _, id := range diff.Remove {
		res := api.DeleteLink(ctx, id)
		if res.OK {
			out.Deleted++
			continue
		}
		out.fail("delete", id, res)
	}

	for _, video := range diff.Add {
		res := api.CreateLink(ctx, models.LinkPayload{
			MobileID:  agg.MobileID,
			GName:     agg.GName,
			ShopName:  agg.ShopName,
			VideoName: video,
		})
		if res.OK {
			out.Created++
			continue
		}
		out.fail("create", video, res)
	}

	logging.WithComponent(ctx, logComponent).Info().
		Str("mobile_id", agg.MobileID).
		Str("gname", agg.GName).
		Str("shop_name", agg.ShopName).
		Int("deleted", out.Deleted).
		Int("created", out.Created).
		Int("failed", out.Failed).
		Msg("Applied video edit")

	return out
}

// DeleteAggregate deletes every underlying link of an aggregate, one request
// at a time.
func DeleteAggregate(ctx context.Context, api LinkAPI, agg AggregateRow) EditResult {
	var out EditResult
	for _, original := range agg.Originals {
		res := api.DeleteLink(ctx, original.ID)
		if res.OK {
			out.Deleted++
			continue
		}
		out.fail("delete", original.ID, res)
	}

	logging.WithComponent(ctx, logComponent).Info().
		Str("mobile_id", agg.MobileID).
		Str("gname", agg.GName).
		Str("shop_name", agg.ShopName).
		Int("deleted", out.Deleted).
		Int("failed", out.Failed).
		Msg("Deleted aggregate")

	return out
}

func (r *EditResult) fail(op, target string, res backend.Result) {
	r.Failed++
	r.Failures = append(r.Failures, Failure{
		Op:      op,
		Target:  target,
		Status:  res.Status,
		Message: res.Message,
	})
}
