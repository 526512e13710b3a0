// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package api

import "errors"

// Error codes used in the APIError envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeBackend      = "BACKEND_ERROR"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeNotFound     = "NOT_FOUND"
	CodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeNotReady     = "NOT_READY"
	CodePartialWrite = "PARTIAL_FAILURE"
)

// Sentinel errors for request parsing.
var (
	ErrEmptyBody       = errors.New("request body is empty")
	ErrInvalidJSON     = errors.New("request body is not valid JSON")
	ErrUnknownCatalog  = errors.New("unknown catalog kind")
	ErrAggregateAbsent = errors.New("aggregate not found")
	ErrDateOrder       = errors.New("start_date must not be after end_date")
)
