// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package geometry

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used for distances and areas.
const EarthRadiusKm = 6371.0088

// DistanceKm returns the great-circle distance between two lon/lat points.
func DistanceKm(a, b orb.Point) float64 {
	return latLng(a).Distance(latLng(b)).Radians() * EarthRadiusKm
}

// AreaKm2 returns the spherical area of a lon/lat bound. Degenerate bounds
// have zero area.
func AreaKm2(b orb.Bound) float64 {
	if b.Max.X() <= b.Min.X() || b.Max.Y() <= b.Min.Y() {
		return 0
	}
	rect := s2.RectFromLatLng(latLng(b.Min)).AddPoint(latLng(b.Max))
	return rect.Area() * EarthRadiusKm * EarthRadiusKm
}

// MaxDistanceKm returns the largest distance from origin to any corner of b.
func MaxDistanceKm(origin orb.Point, b orb.Bound) float64 {
	corners := [...]orb.Point{
		b.Min,
		{b.Min.X(), b.Max.Y()},
		b.Max,
		{b.Max.X(), b.Min.Y()},
	}
	var best float64
	for _, c := range corners {
		if d := DistanceKm(origin, c); d > best {
			best = d
		}
	}
	return best
}

func latLng(p orb.Point) s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat(), p.Lon())
}
