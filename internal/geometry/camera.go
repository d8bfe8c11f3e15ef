// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

var (
	// ErrNonFiniteCamera is returned when a camera field is NaN or infinite.
	ErrNonFiniteCamera = errors.New("camera has non-finite field")

	// ErrInvalidCamera is returned for finite but unusable camera values.
	ErrInvalidCamera = errors.New("invalid camera")
)

// Camera describes the viewer looking straight down at the globe.
type Camera struct {
	// Center is the ground point under the camera (lon, lat in degrees).
	Center orb.Point `json:"center"`

	// Altitude above the ground in meters.
	Altitude float64 `json:"altitude"`

	// Heading in degrees clockwise from north.
	Heading float64 `json:"heading"`

	// Aspect is viewport width divided by height.
	Aspect float64 `json:"aspect"`

	// FOV is the vertical field of view in degrees.
	FOV float64 `json:"fov"`
}

// Validate reports whether the camera can drive a query.
func (c Camera) Validate() error {
	fields := [...]struct {
		name  string
		value float64
	}{
		{"center.lon", c.Center.Lon()},
		{"center.lat", c.Center.Lat()},
		{"altitude", c.Altitude},
		{"heading", c.Heading},
		{"aspect", c.Aspect},
		{"fov", c.FOV},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return fmt.Errorf("%w: %s=%v", ErrNonFiniteCamera, f.name, f.value)
		}
	}

	switch {
	case c.Altitude <= 0:
		return fmt.Errorf("%w: altitude must be positive, got %v", ErrInvalidCamera, c.Altitude)
	case c.Aspect <= 0:
		return fmt.Errorf("%w: aspect must be positive, got %v", ErrInvalidCamera, c.Aspect)
	case c.FOV <= 0 || c.FOV >= 180:
		return fmt.Errorf("%w: fov must be in (0, 180), got %v", ErrInvalidCamera, c.FOV)
	case c.Center.Lat() < -90 || c.Center.Lat() > 90:
		return fmt.Errorf("%w: latitude out of range: %v", ErrInvalidCamera, c.Center.Lat())
	}
	return nil
}

// Equal reports whether two cameras are identical field by field.
func (c Camera) Equal(o Camera) bool {
	return c.Center.Equal(o.Center) &&
		c.Altitude == o.Altitude &&
		c.Heading == o.Heading &&
		c.Aspect == o.Aspect &&
		c.FOV == o.FOV
}

// WithView returns a copy of c moved to center and altitude, keeping the
// lens parameters.
func (c Camera) WithView(center orb.Point, altitude float64) Camera {
	c.Center = center
	c.Altitude = altitude
	return c
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NormalizeLon maps a longitude into [-180, 180).
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
