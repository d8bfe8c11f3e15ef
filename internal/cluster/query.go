// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package cluster

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/geometry"
)

// Query returns every feature visible at zoom whose position lies inside
// bounds. Zooms below MinZoom clamp to MinZoom; zooms above MaxZoom return
// raw nodes, except that nodes sharing a pixel at MaxZoom stay grouped in a
// terminal cluster. Bounds crossing the antimeridian are split. The result order
// is unspecified and the slice is never nil.
func (idx *Index) Query(bounds orb.Bound, zoom int) []Feature {
	lvl, _ := idx.visibleAt(zoom)
	out := make([]Feature, 0)
	if len(lvl.items) == 0 {
		return out
	}

	minLat := math.Max(-90, math.Min(90, bounds.Min.Lat()))
	maxLat := math.Max(-90, math.Min(90, bounds.Max.Lat()))
	if minLat > maxLat {
		return out
	}

	var minLon, maxLon float64
	switch {
	case bounds.Max.Lon()-bounds.Min.Lon() >= 360:
		minLon, maxLon = -180, 180
	default:
		minLon = geometry.NormalizeLon(bounds.Min.Lon())
		maxLon = bounds.Max.Lon()
		if maxLon != 180 {
			maxLon = geometry.NormalizeLon(maxLon)
		}
	}

	var ids []int32
	if minLon > maxLon {
		ids = idx.searchLevel(lvl, ids, minLon, minLat, 180, maxLat)
		ids = idx.searchLevel(lvl, ids, -180, minLat, maxLon, maxLat)
	} else {
		ids = idx.searchLevel(lvl, ids, minLon, minLat, maxLon, maxLat)
	}

	for _, id := range ids {
		out = append(out, idx.feature(lvl.items[id]))
	}
	return out
}

// searchLevel runs a range search in projected space. Projected y grows
// southwards, so maxLat maps to the smaller y.
func (idx *Index) searchLevel(lvl *level, dst []int32, minLon, minLat, maxLon, maxLat float64) []int32 {
	return lvl.tree.rangeSearch(dst,
		geometry.ProjectX(minLon), geometry.ProjectY(maxLat),
		geometry.ProjectX(maxLon), geometry.ProjectY(minLat))
}

// All returns every feature visible at zoom.
func (idx *Index) All(zoom int) []Feature {
	lvl, _ := idx.visibleAt(zoom)
	out := make([]Feature, len(lvl.items))
	for i, it := range lvl.items {
		out[i] = idx.feature(it)
	}
	return out
}
