// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package normalize turns the inconsistent list payloads returned by the backend
services into a single List shape.

Backends answer list requests in several shapes:

	[ {...}, {...} ]                      bare array
	{"items": [...], "total": 12}         items + total
	{"data": [...], "count": "12"}        data + count (string)
	{"results": [...]}                    results, no total

Normalize accepts any of them and never fails: input it cannot make sense of
yields an empty List. New shapes are supported by appending an Extractor.
*/
package normalize

import (
	"bytes"

	"github.com/goccy/go-json"
)

// List is the canonical list shape.
type List struct {
	Items []json.RawMessage `json:"items"`
	Total int               `json:"total"`
}

// Len returns the number of items.
func (l List) Len() int {
	return len(l.Items)
}

// Extractor pulls the item array out of a decoded object. It reports false
// when the object does not carry items in the shape it understands.
type Extractor func(obj map[string]json.RawMessage) ([]json.RawMessage, bool)

// Field returns an Extractor that reads an array from the named field.
func Field(name string) Extractor {
	return func(obj map[string]json.RawMessage) ([]json.RawMessage, bool) {
		raw, ok := obj[name]
		if !ok {
			return nil, false
		}
		return decodeArray(raw)
	}
}

// DefaultExtractors are tried in order; the first match wins.
var DefaultExtractors = []Extractor{
	Field("items"),
	Field("data"),
	Field("results"),
}

// DefaultTotalFields are consulted in order before falling back to the item
// count.
var DefaultTotalFields = []string{"total", "count"}

// Normalizer normalizes list payloads with a fixed set of extractors.
type Normalizer struct {
	extractors  []Extractor
	totalFields []string
}

// New creates a Normalizer using the default extractors followed by extra.
func New(extra ...Extractor) *Normalizer {
	extractors := make([]Extractor, 0, len(DefaultExtractors)+len(extra))
	extractors = append(extractors, DefaultExtractors...)
	extractors = append(extractors, extra...)
	return &Normalizer{
		extractors:  extractors,
		totalFields: DefaultTotalFields,
	}
}

var defaultNormalizer = New()

// Normalize normalizes payload with the default extractors.
func Normalize(payload []byte) List {
	return defaultNormalizer.Normalize(payload)
}

// Normalize converts payload into a List. It never fails.
func (n *Normalizer) Normalize(payload []byte) List {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return emptyList()
	}

	switch trimmed[0] {
	case '[':
		items, ok := decodeArray(trimmed)
		if !ok {
			return emptyList()
		}
		return List{Items: items, Total: len(items)}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return emptyList()
		}
		return n.fromObject(obj)
	default:
		return emptyList()
	}
}

func (n *Normalizer) fromObject(obj map[string]json.RawMessage) List {
	items := []json.RawMessage{}
	for _, extract := range n.extractors {
		if found, ok := extract(obj); ok {
			items = found
			break
		}
	}

	// The first present, non-null total field decides. A value that does not
	// coerce falls back to the item count rather than to later fields.
	total := len(items)
	for _, field := range n.totalFields {
		raw, ok := obj[field]
		if !ok || isNull(raw) {
			continue
		}
		if v, ok := NonNegativeInt(raw); ok {
			total = v
		}
		break
	}

	return List{Items: items, Total: total}
}

// DecodeItems decodes every item into T. Items that fail to decode are
// skipped and counted in dropped.
func DecodeItems[T any](l List) (out []T, dropped int) {
	out = make([]T, 0, len(l.Items))
	for _, raw := range l.Items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			dropped++
			continue
		}
		out = append(out, v)
	}
	return out, dropped
}

func decodeArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func emptyList() List {
	return List{Items: []json.RawMessage{}, Total: 0}
}
