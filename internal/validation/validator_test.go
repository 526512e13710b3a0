// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/signboard/internal/models"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

type editRequest struct {
	MobileID string   `json:"mobile_id" validate:"required,notblank,max=8"`
	Range    string   `json:"range" validate:"omitempty,oneof=24h 7d 30d 90d"`
	Start    string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Videos   []string `json:"videos" validate:"max=2,dive,max=4"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"minimal edit", &editRequest{MobileID: "m-1"}},
		{"full edit", &editRequest{MobileID: "m-1", Range: "7d", Start: "2026-03-14", Videos: []string{"a", "b"}}},
		{"link payload", &models.LinkPayload{MobileID: "m-1", GName: "Lobby", ShopName: "Main", VideoName: "intro.mp4"}},
		{"link payload without group", &models.LinkPayload{MobileID: "m-1", VideoName: "intro.mp4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() = %v, want nil", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"missing mobile id", &editRequest{}, "mobile_id", "required", "mobile_id is required"},
		{"blank mobile id", &editRequest{MobileID: "   "}, "mobile_id", "notblank", "mobile_id must not be blank"},
		{"long mobile id", &editRequest{MobileID: "123456789"}, "mobile_id", "max", "mobile_id must be at most 8 characters"},
		{"bad range", &editRequest{MobileID: "m", Range: "1y"}, "range", "oneof", "range must be one of: 24h 7d 30d 90d"},
		{"bad date", &editRequest{MobileID: "m", Start: "14/03/2026"}, "start_date", "datetime", "start_date must be a date in 2006-01-02 format"},
		{"too many videos", &editRequest{MobileID: "m", Videos: []string{"a", "b", "c"}}, "videos", "max", "videos must be at most 2 items"},
		{"long video", &editRequest{MobileID: "m", Videos: []string{"abcde"}}, "videos[0]", "max", "videos[0] must be at most 4 characters"},
		{"link payload blank video", &models.LinkPayload{MobileID: "m-1", VideoName: " "}, "video_name", "notblank", "video_name must not be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("errors = %d (%v), want 1", len(errs), err)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("field/tag = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	if err.Errors()[0].Field() != "unknown" {
		t.Errorf("field = %q, want unknown", err.Errors()[0].Field())
	}
}

// ===================================================================================================
// APIError Conversion Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&editRequest{})
	apiErr := err.ToAPIError()

	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q, want %q", apiErr.Code, ErrorCode)
	}
	if apiErr.Message != "mobile_id is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "mobile_id" || apiErr.Details["tag"] != "required" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&editRequest{Range: "1y", Start: "nope"})
	if err == nil || len(err.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %v", err)
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q", apiErr.Code)
	}
	for _, want := range []string{"mobile_id", "range", "start_date"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message %q should mention %s", apiErr.Message, want)
		}
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("Details[fields] = %v", apiErr.Details["fields"])
	}
	if err.Error() != apiErr.Message {
		t.Errorf("Error() = %q, want %q", err.Error(), apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != ErrorCode || apiErr.Message != "Validation failed" {
		t.Errorf("empty ToAPIError = %+v", apiErr)
	}
	if (&RequestValidationError{}).Error() != "validation failed" {
		t.Error("empty Error() should be generic")
	}
}
