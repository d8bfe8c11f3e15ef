// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package geometry

import "math"

// MaxLatitude is the Web Mercator latitude limit in degrees.
const MaxLatitude = 85.05112877980659

// ProjectX maps a longitude onto [0, 1].
func ProjectX(lon float64) float64 {
	return lon/360 + 0.5
}

// ProjectY maps a latitude onto [0, 1] with 0 at the north edge.
func ProjectY(lat float64) float64 {
	sin := math.Sin(lat * math.Pi / 180)
	y := 0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi
	switch {
	case y < 0:
		return 0
	case y > 1:
		return 1
	default:
		return y
	}
}

// UnprojectX is the inverse of ProjectX.
func UnprojectX(x float64) float64 {
	return (x - 0.5) * 360
}

// UnprojectY is the inverse of ProjectY.
func UnprojectY(y float64) float64 {
	y2 := (180 - y*360) * math.Pi / 180
	return 360*math.Atan(math.Exp(y2))/math.Pi - 90
}

// WorldSize is the side of the projected world in pixels at zoom z for tiles
// of the given extent.
func WorldSize(extent float64, z int) float64 {
	return extent * math.Exp2(float64(z))
}
