// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by every handler. Errors name fields
// by their json tag, so a failure on LinkPayload.MobileID is reported as
// "mobile_id is required", matching what the client sent.
//
// # Custom Tags
//
//   - notblank: the string must contain a non-whitespace character
//     (go-playground's non-standard NotBlank)
//
// # Usage
//
//	type VideoEditRequest struct {
//	    MobileID string   `json:"mobile_id" validate:"required,notblank,max=128"`
//	    Videos   []string `json:"videos" validate:"max=500,dive,max=512"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// # Thread Safety
//
// GetValidator initializes the validator once; validator.Validate is safe for
// concurrent use and caches struct metadata after the first call per type.
package validation
