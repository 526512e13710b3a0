// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package backend

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/signboard/internal/normalize"
)

// MsgAllFallbacksFailed is the message of the Result returned when an
// operation has no candidates to try.
const MsgAllFallbacksFailed = "all fallback endpoints failed"

// Result is the outcome of a backend call. Failures are values, not Go
// errors: callers branch on OK.
//
// Status is the HTTP status of the response, or 0 when no response was
// received (transport error, timeout, canceled context).
type Result struct {
	OK      bool            `json:"ok"`
	Status  int             `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error is the error form of a failed Result.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Err returns nil for a successful Result and an *Error otherwise.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return &Error{Status: r.Status, Message: r.Message}
}

// Decode unmarshals the response body into v.
func (r Result) Decode(v interface{}) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// List normalizes the response body as a list payload. A failed Result
// yields an empty list.
func (r Result) List() normalize.List {
	if !r.OK {
		return normalize.Normalize(nil)
	}
	return normalize.Normalize(r.Data)
}

// failed builds a failed Result, deriving its message from the response
// body or the transport error.
func failed(status int, body []byte, transportErr error) Result {
	return Result{
		OK:      false,
		Status:  status,
		Message: failureMessage(status, body, transportErr),
		Data:    jsonOrNil(body),
	}
}

func succeeded(status int, body []byte) Result {
	return Result{OK: true, Status: status, Data: jsonOrNil(body)}
}

// failureMessage picks the most specific human-readable message available:
// the body's detail, message or error field, then the transport error, then
// the status text.
func failureMessage(status int, body []byte, transportErr error) string {
	if msg := bodyMessage(body); msg != "" {
		return msg
	}
	if transportErr != nil {
		return transportErr.Error()
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}

func bodyMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		if msg := messageValue(fields[key]); msg != "" {
			return msg
		}
	}
	return ""
}

// messageValue reads a string, or the msg of the first entry of a list of
// validation errors ({"detail":[{"loc":[...],"msg":"..."}]}).
func messageValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
	case '[':
		var entries []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(raw, &entries); err == nil && len(entries) > 0 {
			return strings.TrimSpace(entries[0].Msg)
		}
	case '{':
		var nested struct {
			Message string `json:"message"`
			Msg     string `json:"msg"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil {
			if nested.Message != "" {
				return strings.TrimSpace(nested.Message)
			}
			return strings.TrimSpace(nested.Msg)
		}
	}
	return ""
}

func jsonOrNil(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}
