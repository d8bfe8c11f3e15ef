// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package cluster

import (
	"math"

	"github.com/paulmach/orb"
)

// Expansion is the result of opening a cluster one level.
type Expansion struct {
	ClusterID ClusterID

	// Zoom is the zoom at which Children are displayed.
	Zoom int

	Children []Feature

	// Leaves is set when the children are raw nodes, i.e. the cluster was
	// formed at MaxZoom and cannot be split by zooming further.
	Leaves []Node

	// Spiderfy is set when at least two leaves fall in the same pixel at
	// MaxZoom and need a radial layout to be told apart.
	Spiderfy bool
}

// Terminal reports whether zooming in cannot split the cluster further.
func (e Expansion) Terminal() bool { return e.Leaves != nil }

// ExpandCluster returns the immediate children of id at the next finer zoom.
func (idx *Index) ExpandCluster(id ClusterID) (Expansion, error) {
	slot, err := idx.lookup(id)
	if err != nil {
		return Expansion{}, err
	}
	rec := &idx.clusters[slot]
	lvl, zoom := idx.levelAt(rec.zoom + 1)

	exp := Expansion{
		ClusterID: id,
		Zoom:      zoom,
		Children:  make([]Feature, len(rec.children)),
	}
	for i, c := range rec.children {
		exp.Children[i] = idx.feature(lvl.items[c])
	}

	if zoom > idx.cfg.MaxZoom {
		exp.Leaves = make([]Node, len(exp.Children))
		for i, f := range exp.Children {
			exp.Leaves[i] = *f.Node
		}
		exp.Spiderfy = idx.sharesPixel(lvl, rec.children)
	}
	return exp, nil
}

// sharesPixel reports whether any two of the given items quantise to the
// same pixel at MaxZoom.
func (idx *Index) sharesPixel(lvl *level, items []int32) bool {
	seen := make(map[[2]int64]struct{}, len(items))
	for _, i := range items {
		cell := idx.pixel(lvl.items[i])
		if _, dup := seen[cell]; dup {
			return true
		}
		seen[cell] = struct{}{}
	}
	return false
}

// ExpansionZoom returns the zoom at which the cluster splits into its
// children, capped at MaxZoom+1 where only raw nodes and coincident groups
// remain.
func (idx *Index) ExpansionZoom(id ClusterID) (int, error) {
	slot, err := idx.lookup(id)
	if err != nil {
		return 0, err
	}
	return min(idx.clusters[slot].zoom+1, idx.cfg.MaxZoom+1), nil
}

// Cluster returns the feature for id as it appears at the zoom it was formed.
func (idx *Index) Cluster(id ClusterID) (Feature, error) {
	slot, err := idx.lookup(id)
	if err != nil {
		return Feature{}, err
	}
	return idx.feature(item{kind: KindCluster, ref: slot}), nil
}

// Leaves returns the nodes under id in hierarchy order, skipping offset and
// returning at most limit nodes. A limit <= 0 returns all remaining nodes.
func (idx *Index) Leaves(id ClusterID, limit, offset int) ([]Node, error) {
	slot, err := idx.lookup(id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = math.MaxInt
	}
	out := make([]Node, 0, min(limit, idx.clusters[slot].count))
	skipped := 0
	idx.walkLeaves(slot, func(n *Node) bool {
		if skipped < offset {
			skipped++
			return true
		}
		out = append(out, *n)
		return len(out) < limit
	})
	return out, nil
}

// walkLeaves visits the nodes under a cluster depth first until fn returns
// false.
func (idx *Index) walkLeaves(slot int32, fn func(*Node) bool) bool {
	rec := &idx.clusters[slot]
	lvl, _ := idx.levelAt(rec.zoom + 1)
	for _, c := range rec.children {
		it := lvl.items[c]
		if it.kind == KindCluster {
			if !idx.walkLeaves(it.ref, fn) {
				return false
			}
			continue
		}
		if !fn(&idx.nodes[it.ref]) {
			return false
		}
	}
	return true
}

// Bound returns the extent of all members of id.
func (idx *Index) Bound(id ClusterID) (orb.Bound, error) {
	slot, err := idx.lookup(id)
	if err != nil {
		return orb.Bound{}, err
	}
	return idx.clusters[slot].bound, nil
}
