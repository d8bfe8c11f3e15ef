// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package geometry

import (
	"fmt"
	"math"
)

// EarthCircumference is the equatorial circumference in meters. It is the
// default altitude at which zoom 0 ends.
const EarthCircumference = 40075016.686

// ZoomLevel is a discrete camera zoom. Zero is the whole globe.
type ZoomLevel int

// ZoomScale converts between camera altitude and zoom levels.
type ZoomScale struct {
	MinZoom ZoomLevel `koanf:"min_zoom"`
	MaxZoom ZoomLevel `koanf:"max_zoom"`

	// BaseAltitude is the upper edge of the zoom 0 band in meters.
	BaseAltitude float64 `koanf:"base_altitude"`
}

// DefaultZoomScale returns the scale used when nothing is configured.
func DefaultZoomScale() ZoomScale {
	return ZoomScale{
		MinZoom:      0,
		MaxZoom:      16,
		BaseAltitude: EarthCircumference,
	}
}

// Validate checks the scale bounds.
func (s ZoomScale) Validate() error {
	if s.MinZoom < 0 {
		return fmt.Errorf("zoom scale: min_zoom must be >= 0, got %d", s.MinZoom)
	}
	if s.MaxZoom < s.MinZoom {
		return fmt.Errorf("zoom scale: max_zoom (%d) must be >= min_zoom (%d)", s.MaxZoom, s.MinZoom)
	}
	if !isFinite(s.BaseAltitude) || s.BaseAltitude <= 0 {
		return fmt.Errorf("zoom scale: base_altitude must be positive, got %v", s.BaseAltitude)
	}
	return nil
}

// AltitudeToZoom maps an altitude onto its zoom band. Lower altitudes never
// map to a smaller zoom. Altitudes at or below zero saturate at MaxZoom;
// NaN saturates at MinZoom.
func (s ZoomScale) AltitudeToZoom(altitude float64) ZoomLevel {
	if math.IsNaN(altitude) {
		return s.MinZoom
	}
	if altitude <= 0 {
		return s.MaxZoom
	}
	z := math.Floor(math.Log2(s.BaseAltitude / altitude))
	if z <= float64(s.MinZoom) {
		return s.MinZoom
	}
	if z >= float64(s.MaxZoom) {
		return s.MaxZoom
	}
	return ZoomLevel(z)
}

// ZoomToAltitude returns the representative altitude of a zoom band, the
// geometric centre between its edges.
func (s ZoomScale) ZoomToAltitude(z ZoomLevel) float64 {
	z = s.Clamp(z)
	return s.BaseAltitude / math.Exp2(float64(z)+0.5)
}

// Clamp limits z to the configured range.
func (s ZoomScale) Clamp(z ZoomLevel) ZoomLevel {
	if z < s.MinZoom {
		return s.MinZoom
	}
	if z > s.MaxZoom {
		return s.MaxZoom
	}
	return z
}
