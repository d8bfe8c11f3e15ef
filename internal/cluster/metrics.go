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

// LevelMetrics summarises one zoom level.
type LevelMetrics struct {
	Zoom           int     `json:"zoom"`
	Features       int     `json:"features"`
	Clusters       int     `json:"clusters"`
	Nodes          int     `json:"nodes"`
	Members        int     `json:"members"`
	LargestCluster int     `json:"largest_cluster"`
	MeanCluster    float64 `json:"mean_cluster_size"`

	// AreaKm2 is the area of the box around all nodes.
	AreaKm2 float64 `json:"area_km2"`

	// DensityPerKm2 is members per square kilometre of that box.
	DensityPerKm2 float64 `json:"density_per_km2"`
}

// ClusterMetrics summarises one cluster.
type ClusterMetrics struct {
	ID       ClusterID `json:"id,string"`
	Count    int       `json:"count"`
	Level    int       `json:"level"`
	Zoom     int       `json:"zoom"`
	Children int       `json:"children"`

	Center orb.Point `json:"center"`
	Bound  orb.Bound `json:"bound"`

	// RadiusKm is the great-circle distance from the centroid to the
	// farthest corner of Bound.
	RadiusKm      float64 `json:"radius_km"`
	AreaKm2       float64 `json:"area_km2"`
	DensityPerKm2 float64 `json:"density_per_km2"`

	// Averages holds the mean of every numeric metadata field over the
	// members that carry it.
	Averages map[string]float64 `json:"averages,omitempty"`
}

// Metrics returns counts and density for the features visible at zoom.
func (idx *Index) Metrics(zoom int) LevelMetrics {
	lvl, zoom := idx.visibleAt(zoom)
	m := LevelMetrics{Zoom: zoom, Features: len(lvl.items)}
	for _, it := range lvl.items {
		m.Members += it.count
		if it.kind == KindCluster {
			m.Clusters++
			m.LargestCluster = max(m.LargestCluster, it.count)
			continue
		}
		m.Nodes++
	}
	if m.Clusters > 0 {
		m.MeanCluster = float64(m.Members-m.Nodes) / float64(m.Clusters)
	}

	if len(idx.nodes) > 0 {
		b := idx.nodes[0].Position.Bound()
		for _, n := range idx.nodes[1:] {
			b = b.Extend(n.Position)
		}
		m.AreaKm2 = geometry.AreaKm2(b)
		if m.AreaKm2 > 0 {
			m.DensityPerKm2 = float64(m.Members) / m.AreaKm2
		}
	}
	return m
}

// ClusterMetrics returns size, extent and metadata averages for id.
func (idx *Index) ClusterMetrics(id ClusterID) (ClusterMetrics, error) {
	slot, err := idx.lookup(id)
	if err != nil {
		return ClusterMetrics{}, err
	}
	rec := &idx.clusters[slot]
	m := ClusterMetrics{
		ID:       id,
		Count:    rec.count,
		Level:    rec.depth,
		Zoom:     rec.zoom,
		Children: len(rec.children),
		Center:   rec.position,
		Bound:    rec.bound,
		RadiusKm: geometry.MaxDistanceKm(rec.position, rec.bound),
		AreaKm2:  geometry.AreaKm2(rec.bound),
	}
	if m.AreaKm2 > 0 {
		m.DensityPerKm2 = float64(rec.count) / m.AreaKm2
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	idx.walkLeaves(slot, func(n *Node) bool {
		for k, v := range n.Metadata {
			if f, ok := numeric(v); ok {
				sums[k] += f
				counts[k]++
			}
		}
		return true
	})
	if len(sums) > 0 {
		m.Averages = make(map[string]float64, len(sums))
		for k, s := range sums {
			m.Averages[k] = s / float64(counts[k])
		}
	}
	return m, nil
}

// NumericMetadata returns the finite numeric metadata entries of n, or nil
// when there are none.
func (n Node) NumericMetadata() map[string]float64 {
	var out map[string]float64
	for k, v := range n.Metadata {
		f, ok := numeric(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if out == nil {
			out = make(map[string]float64)
		}
		out[k] = f
	}
	return out
}

// numeric converts the number types a decoded metadata map may hold.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
