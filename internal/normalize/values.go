// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package normalize

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Display-name keys for catalog list entries, most specific first.
var (
	ShopNameKeys  = []string{"shop_name", "name", "sname"}
	GroupNameKeys = []string{"gname", "name"}
	VideoNameKeys = []string{"video_name", "name"}
)

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// NonNegativeInt coerces a JSON number, integral float or numeric string to
// a non-negative int.
func NonNegativeInt(raw json.RawMessage) (int, bool) {
	f, ok := Float(raw)
	if !ok || f < 0 || f != math.Trunc(f) || f > maxExactInt {
		return 0, false
	}
	return int(f), true
}

// Float coerces a JSON number or numeric string to a finite float64. null,
// booleans, objects and arrays are rejected.
func Float(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	if c := raw[0]; c != '"' && c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	} else if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ID is an identifier that arrives as either a JSON string or a number. It is
// always held as a string.
type ID string

// UnmarshalJSON accepts strings, integers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*id = ID(n.String())
		return nil
	}
}

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}

// OptFloat is an optional number that tolerates numeric strings. Malformed
// values decode as absent rather than failing the enclosing object.
type OptFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptFloat) UnmarshalJSON(data []byte) error {
	o.Value, o.Valid = Float(data)
	if !o.Valid {
		o.Value = 0
	}
	return nil
}

// MarshalJSON writes null when the value is absent.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Some returns a present OptFloat.
func Some(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true}
}

// Names extracts a display name from each list entry. An entry is either a
// bare string or an object; for objects the first non-empty string among keys
// is used. Entries with no name are skipped.
func Names(l List, keys ...string) []string {
	names := make([]string, 0, len(l.Items))
	for _, raw := range l.Items {
		if name := nameOf(raw, keys); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func nameOf(raw json.RawMessage, keys []string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ""
		}
		for _, key := range keys {
			var s string
			if v, ok := obj[key]; ok && json.Unmarshal(v, &s) == nil {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// Bool coerces a JSON liveness flag. Booleans are taken as-is; the numbers 1
// and 0 map to true and false; strings accept true/false, 1/0 and
// online/offline, case-insensitively. Anything else is undecided.
func Bool(raw json.RawMessage) (value, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false, false
	}

	switch raw[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return false, false
		}
		return b, true
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, false
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "online":
			return true, true
		case "false", "0", "offline":
			return false, true
		}
		return false, false
	case '{', '[', 'n':
		return false, false
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return false, false
		}
		switch f {
		case 1:
			return true, true
		case 0:
			return false, true
		}
		return false, false
	}
}
