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

// ErrNegativeMargin is returned by ExpandBounds for a negative or non-finite
// ratio.
var ErrNegativeMargin = errors.New("bounds margin must be a finite non-negative ratio")

// WorldBound covers every longitude and latitude.
var WorldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

const (
	// metersPerDegree is the length of one degree of latitude.
	metersPerDegree = EarthCircumference / 360

	// MinHalfSpan is the smallest half extent, in degrees, VisibleBounds
	// returns on either axis.
	MinHalfSpan = 1e-6

	// minExpand is the growth applied to a zero-width axis.
	minExpand = 1e-9

	// minCosLat keeps the longitude span finite near the poles.
	minCosLat = 0.01
)

// VisibleBounds returns the axis-aligned ground box seen by the camera. The
// box covers the rotated viewport footprint, is never empty and keeps
// latitudes inside the Mercator limit. Longitudes are not normalised and
// may extend past +/-180; a span of 360 degrees or more collapses to the
// whole world.
func VisibleBounds(c Camera) (orb.Bound, error) {
	if err := c.Validate(); err != nil {
		return orb.Bound{}, err
	}

	halfH := c.Altitude * math.Tan(c.FOV*math.Pi/360)
	halfW := halfH * c.Aspect

	theta := c.Heading * math.Pi / 180
	sin, cos := math.Abs(math.Sin(theta)), math.Abs(math.Cos(theta))
	extentX := halfW*cos + halfH*sin
	extentY := halfW*sin + halfH*cos

	lat := clampLat(c.Center.Lat())
	dLat := math.Max(extentY/metersPerDegree, MinHalfSpan)
	cosLat := math.Max(math.Cos(lat*math.Pi/180), minCosLat)
	dLon := math.Max(extentX/(metersPerDegree*cosLat), MinHalfSpan)

	b := orb.Bound{
		Min: orb.Point{c.Center.Lon() - dLon, math.Max(lat-dLat, -MaxLatitude)},
		Max: orb.Point{c.Center.Lon() + dLon, math.Min(lat+dLat, MaxLatitude)},
	}
	if 2*dLon >= 360 {
		b.Min[0], b.Max[0] = -180, 180
	}
	return b, nil
}

// ExpandBounds grows b symmetrically so each axis gains ratio times its span
// (ratio/2 on either side). Zero returns b unchanged. A zero-width axis still
// grows so that any positive ratio yields a box strictly containing b.
func ExpandBounds(b orb.Bound, ratio float64) (orb.Bound, error) {
	if !isFinite(ratio) || ratio < 0 {
		return orb.Bound{}, fmt.Errorf("%w: %v", ErrNegativeMargin, ratio)
	}
	if ratio == 0 {
		return b, nil
	}

	dx := math.Max((b.Max.X()-b.Min.X())*ratio/2, minExpand)
	dy := math.Max((b.Max.Y()-b.Min.Y())*ratio/2, minExpand)
	return orb.Bound{
		Min: orb.Point{b.Min.X() - dx, b.Min.Y() - dy},
		Max: orb.Point{b.Max.X() + dx, b.Max.Y() + dy},
	}, nil
}

// ContainsBound reports whether outer covers inner on both axes.
func ContainsBound(outer, inner orb.Bound) bool {
	return outer.Min.X() <= inner.Min.X() && outer.Min.Y() <= inner.Min.Y() &&
		outer.Max.X() >= inner.Max.X() && outer.Max.Y() >= inner.Max.Y()
}

// clampLat keeps a centre latitude far enough from the Mercator limit that
// a minimum span still fits.
func clampLat(lat float64) float64 {
	limit := MaxLatitude - MinHalfSpan
	return math.Max(-limit, math.Min(limit, lat))
}
