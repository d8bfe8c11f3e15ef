// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package validation

import (
	"math"
	"strings"
	"testing"
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

type viewportRequest struct {
	MinLon float64 `query:"min_lon" validate:"finite,longitude"`
	MinLat float64 `query:"min_lat" validate:"finite,latitude"`
	MaxLon float64 `query:"max_lon" validate:"finite,gtefield=MinLon"`
	MaxLat float64 `query:"max_lat" validate:"finite,latitude,gtefield=MinLat"`
	Zoom   int     `query:"zoom" validate:"zoom"`
}

type expandRequest struct {
	ClusterID string `json:"cluster_id" validate:"required,clusterid"`
	Limit     int    `json:"limit" validate:"min=0,max=10000"`
}

type historyRequest struct {
	IP    string `json:"ip" validate:"required,ip"`
	Order string `json:"order" validate:"omitempty,oneof=asc desc"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"viewport", &viewportRequest{MinLon: -10, MinLat: -5, MaxLon: 10, MaxLat: 5, Zoom: 3}},
		{"viewport past antimeridian", &viewportRequest{MinLon: 170, MinLat: 0, MaxLon: 190, MaxLat: 10, Zoom: 4}},
		{"expand", &expandRequest{ClusterID: "4294967301", Limit: 10}},
		{"history v4", &historyRequest{IP: "203.0.113.9"}},
		{"history v6", &historyRequest{IP: "2001:db8::1", Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() error = %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantField string
		wantTag   string
	}{
		{"nan longitude", &viewportRequest{MinLon: math.NaN(), MaxLon: 1, MaxLat: 1}, "min_lon", "finite"},
		{"latitude range", &viewportRequest{MinLat: -91, MaxLon: 1, MaxLat: 1}, "min_lat", "latitude"},
		{"inverted box", &viewportRequest{MinLon: 5, MaxLon: 1, MaxLat: 1}, "max_lon", "gtefield"},
		{"zoom", &viewportRequest{MaxLon: 1, MaxLat: 1, Zoom: 32}, "zoom", "zoom"},
		{"missing cluster", &expandRequest{}, "cluster_id", "required"},
		{"bad cluster", &expandRequest{ClusterID: "abc"}, "cluster_id", "clusterid"},
		{"bad ip", &historyRequest{IP: "not-an-ip"}, "ip", "ip"},
		{"bad order", &historyRequest{IP: "203.0.113.9", Order: "sideways"}, "order", "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(verr) == 0 {
				t.Fatal("ValidateStruct() returned an empty error list")
			}
			if verr[0].Field != tt.wantField || verr[0].Tag != tt.wantTag {
				t.Errorf("first error = %s/%s, want %s/%s", verr[0].Field, verr[0].Tag, tt.wantField, tt.wantTag)
			}
		})
	}
}

// ===================================================================================================
// Summary Tests
// ===================================================================================================

func TestSummary_SingleError(t *testing.T) {
	verr := ValidateStruct(&expandRequest{ClusterID: "x"})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	msg, details := verr.Summary()
	if msg != "cluster_id must be a cluster id" {
		t.Errorf("message = %q", msg)
	}
	if details["field"] != "cluster_id" || details["tag"] != "clusterid" {
		t.Errorf("details = %v, want field cluster_id and tag clusterid", details)
	}
}

func TestSummary_MultipleErrors(t *testing.T) {
	verr := ValidateStruct(&historyRequest{IP: "", Order: "up"})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	msg, details := verr.Summary()
	fields, ok := details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Fatalf("details[fields] = %v, want 2 entries", details["fields"])
	}
	if !strings.Contains(msg, "ip:") || !strings.Contains(msg, "order:") {
		t.Errorf("message = %q, want both fields listed", msg)
	}
}

func TestSummary_Empty(t *testing.T) {
	msg, details := Errors(nil).Summary()
	if msg != "Validation failed" || details != nil {
		t.Errorf("Summary() = %q, %v", msg, details)
	}
	if Errors(nil).Error() != "validation failed" {
		t.Errorf("Error() = %q", Errors(nil).Error())
	}
}

func TestZoomTag(t *testing.T) {
	type zoomOnly struct {
		Zoom int `json:"zoom" validate:"zoom"`
	}
	for _, z := range []int{0, 16, 31} {
		if err := ValidateStruct(&zoomOnly{Zoom: z}); err != nil {
			t.Errorf("zoom %d rejected: %v", z, err)
		}
	}
	for _, z := range []int{-1, 32} {
		if ValidateStruct(&zoomOnly{Zoom: z}) == nil {
			t.Errorf("zoom %d accepted", z)
		}
	}
}

// ===================================================================================================
// Error Message Tests
// ===================================================================================================

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{&viewportRequest{MinLat: 100, MaxLon: 1, MaxLat: 100}, "min_lat must be a valid latitude (-90 to 90)"},
		{&viewportRequest{MaxLon: 1, MaxLat: 1, Zoom: -1}, "zoom must be a zoom level between 0 and 31"},
		{&expandRequest{ClusterID: "1", Limit: 20000}, "limit must be at most 10000"},
		{&historyRequest{IP: "1.2.3.4", Order: "x"}, "order must be one of: asc desc"},
	}

	for _, tt := range tests {
		verr := ValidateStruct(tt.input)
		if verr == nil {
			t.Errorf("ValidateStruct(%+v) = nil, want %q", tt.input, tt.want)
			continue
		}
		if !strings.Contains(verr.Error(), tt.want) {
			t.Errorf("Error() = %q, want it to contain %q", verr.Error(), tt.want)
		}
	}
}
