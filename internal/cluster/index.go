// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package cluster

import (
	"fmt"
	"math"
	"slices"

	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/geometry"
)

// item is one entry of a zoom level: a node or a cluster, in projected
// unit-square coordinates.
type item struct {
	x, y  float64
	count int
	kind  Kind
	ref   int32 // node index or cluster arena slot
}

// level holds the items visible at one zoom and their spatial index.
type level struct {
	items []item
	tree  *kdTree
}

// record is a cluster in the arena.
type record struct {
	x, y     float64
	position orb.Point
	count    int
	depth    int
	zoom     int
	children []int32 // item indices in the level at zoom+1
	bound    orb.Bound
}

// Index is an immutable cluster hierarchy over a node set.
type Index struct {
	cfg      Config
	version  uint32
	nodes    []Node
	clusters []record

	// levels[i] holds zoom MinZoom+i. The last entry is MaxZoom+1, the raw
	// nodes, and is what clusters formed at MaxZoom point into.
	levels []level

	// deepest is what is displayed above MaxZoom: the raw nodes, with every
	// group that shares a pixel at MaxZoom kept as a terminal cluster.
	deepest level
}

// New builds an index with version 0.
func New(nodes []Node, cfg Config) (*Index, error) {
	return NewVersioned(nodes, cfg, 0)
}

// NewVersioned builds an index whose ClusterIDs carry version. Callers that
// rebuild over time pass a new version per build so that stale ids are
// detected.
//
// Longitudes are wrapped into [-180, 180) and the stored nodes carry the
// wrapped value. Latitudes must lie in [-90, 90]; those past the Mercator
// limit are projected onto the edge row, so nodes near the poles share
// pixels and spiderfy.
func NewVersioned(nodes []Node, cfg Config, version uint32) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i := range nodes {
		if p := nodes[i].Position; !validPosition(p) {
			return nil, fmt.Errorf("%w: %q has position %v", ErrInvalidNode, nodes[i].ID, p)
		}
	}

	idx := &Index{
		cfg:     cfg,
		version: version,
		nodes:   slices.Clone(nodes),
		levels:  make([]level, cfg.MaxZoom-cfg.MinZoom+2),
	}

	leaves := make([]item, len(idx.nodes))
	for i := range idx.nodes {
		n := &idx.nodes[i]
		n.Position[0] = geometry.NormalizeLon(n.Position[0])
		leaves[i] = item{
			x:     geometry.ProjectX(n.Position.Lon()),
			y:     geometry.ProjectY(n.Position.Lat()),
			count: 1,
			kind:  KindNode,
			ref:   int32(i),
		}
	}
	top := len(idx.levels) - 1
	idx.levels[top] = idx.newLevel(leaves)

	for z := cfg.MaxZoom; z >= cfg.MinZoom; z-- {
		finer := &idx.levels[z+1-cfg.MinZoom]
		idx.levels[z-cfg.MinZoom] = idx.newLevel(idx.clusterLevel(finer, z))
	}
	idx.deepest = idx.newLevel(idx.coincidentLevel(&idx.levels[top]))
	return idx, nil
}

func validPosition(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.Lat() >= -90 && p.Lat() <= 90
}

func (idx *Index) newLevel(items []item) level {
	xs := make([]float64, len(items))
	ys := make([]float64, len(items))
	for i, it := range items {
		xs[i], ys[i] = it.x, it.y
	}
	return level{items: items, tree: newKDTree(xs, ys, idx.cfg.NodeSize)}
}

// clusterLevel merges the items of finer into the items visible at zoom z.
func (idx *Index) clusterLevel(finer *level, z int) []item {
	r := idx.cfg.radiusAt(z)
	visited := make([]bool, len(finer.items))
	out := make([]item, 0, len(finer.items))

	var neighbours, members []int32
	for i := range finer.items {
		if visited[i] {
			continue
		}
		visited[i] = true
		seed := finer.items[i]

		neighbours = finer.tree.within(neighbours[:0], seed.x, seed.y, r)
		slices.Sort(neighbours)

		total := seed.count
		members = append(members[:0], int32(i))
		for _, j := range neighbours {
			if !visited[j] {
				total += finer.items[j].count
				members = append(members, j)
			}
		}

		if len(members) > 1 && total >= idx.cfg.MinPoints {
			slot := idx.addCluster(finer, members, total, z)
			for _, j := range members {
				visited[j] = true
			}
			rec := &idx.clusters[slot]
			out = append(out, item{x: rec.x, y: rec.y, count: total, kind: KindCluster, ref: slot})
			continue
		}

		for _, j := range members {
			visited[j] = true
			out = append(out, finer.items[j])
		}
	}
	return out
}

// coincidentLevel groups the leaves that fall in the same pixel at MaxZoom
// into clusters formed at MaxZoom+1. Zooming cannot split such a group, so
// it stays a single terminal marker whatever MinPoints says.
func (idx *Index) coincidentLevel(leaves *level) []item {
	cells := make(map[[2]int64][]int32)
	var order [][2]int64
	for i, it := range leaves.items {
		cell := idx.pixel(it)
		if _, ok := cells[cell]; !ok {
			order = append(order, cell)
		}
		cells[cell] = append(cells[cell], int32(i))
	}

	out := make([]item, 0, len(order))
	for _, cell := range order {
		members := cells[cell]
		if len(members) == 1 {
			out = append(out, leaves.items[members[0]])
			continue
		}
		slot := idx.addCluster(leaves, members, len(members), idx.cfg.MaxZoom+1)
		rec := &idx.clusters[slot]
		out = append(out, item{x: rec.x, y: rec.y, count: len(members), kind: KindCluster, ref: slot})
	}
	return out
}

// pixel quantises it to a pixel at MaxZoom.
func (idx *Index) pixel(it item) [2]int64 {
	scale := idx.cfg.Extent * math.Exp2(float64(idx.cfg.MaxZoom))
	return [2]int64{int64(math.Floor(it.x * scale)), int64(math.Floor(it.y * scale))}
}

// addCluster appends a record built from members of finer and returns its
// arena slot.
func (idx *Index) addCluster(finer *level, members []int32, total, z int) int32 {
	var sx, sy, w float64
	depth := 0
	var bound orb.Bound
	for k, j := range members {
		it := finer.items[j]
		weight := 1.0
		if idx.cfg.Centroid == CentroidCountWeighted {
			weight = float64(it.count)
		}
		sx += it.x * weight
		sy += it.y * weight
		w += weight

		if d := idx.itemDepth(it); d > depth {
			depth = d
		}
		if b := idx.itemBound(it); k == 0 {
			bound = b
		} else {
			bound = bound.Union(b)
		}
	}

	x, y := sx/w, sy/w
	rec := record{
		x:        x,
		y:        y,
		position: orb.Point{geometry.UnprojectX(x), geometry.UnprojectY(y)},
		count:    total,
		depth:    depth + 1,
		zoom:     z,
		children: slices.Clone(members),
		bound:    bound,
	}
	idx.clusters = append(idx.clusters, rec)
	return int32(len(idx.clusters) - 1)
}

func (idx *Index) itemDepth(it item) int {
	if it.kind == KindCluster {
		return idx.clusters[it.ref].depth
	}
	return 0
}

func (idx *Index) itemBound(it item) orb.Bound {
	if it.kind == KindCluster {
		return idx.clusters[it.ref].bound
	}
	return idx.nodes[it.ref].Position.Bound()
}

// feature converts an item to its public form.
func (idx *Index) feature(it item) Feature {
	if it.kind == KindCluster {
		rec := &idx.clusters[it.ref]
		return Feature{
			Kind:     KindCluster,
			Position: rec.position,
			Count:    rec.count,
			ID:       newClusterID(idx.version, it.ref),
			Level:    rec.depth,
			Zoom:     rec.zoom,
		}
	}
	n := &idx.nodes[it.ref]
	return Feature{
		Kind:     KindNode,
		Position: n.Position,
		Count:    1,
		Node:     n,
	}
}

// lookup resolves id to an arena slot.
func (idx *Index) lookup(id ClusterID) (int32, error) {
	if id.version() != idx.version {
		return 0, fmt.Errorf("%w: %s belongs to index version %d, current is %d",
			ErrClusterNotFound, id, id.version(), idx.version)
	}
	slot := id.slot()
	if slot < 0 || int(slot) >= len(idx.clusters) {
		return 0, fmt.Errorf("%w: %s", ErrClusterNotFound, id)
	}
	return slot, nil
}

// levelAt returns the hierarchy level for zoom, clamped to the built range.
func (idx *Index) levelAt(zoom int) (*level, int) {
	zoom = max(idx.cfg.MinZoom, min(zoom, idx.cfg.MaxZoom+1))
	return &idx.levels[zoom-idx.cfg.MinZoom], zoom
}

// visibleAt is levelAt for display: above MaxZoom it returns the raw nodes
// with coincident groups kept together.
func (idx *Index) visibleAt(zoom int) (*level, int) {
	if zoom > idx.cfg.MaxZoom {
		return &idx.deepest, idx.cfg.MaxZoom + 1
	}
	return idx.levelAt(zoom)
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int { return len(idx.nodes) }

// Version returns the version stamped into this index's ClusterIDs.
func (idx *Index) Version() uint32 { return idx.version }

// Config returns the build configuration.
func (idx *Index) Config() Config { return idx.cfg }

// Nodes returns the indexed nodes in input order. The slice must not be
// modified.
func (idx *Index) Nodes() []Node { return idx.nodes }
