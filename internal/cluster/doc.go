// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package cluster builds and queries the multi-level spatial index that turns
thousands of provider nodes into a handful of markers at low zoom and back
into individual nodes at high zoom.

# Build

New projects every node onto the Web Mercator unit square and walks the zoom
levels from MaxZoom down to MinZoom. At each level the items of the finer
level are stored in a static KD-tree and visited in input order. An
unvisited item absorbs all unvisited neighbours within

	Radius / (Extent * RadiusDecay^zoom)

when the combined member count reaches MinPoints. Otherwise the item and its
neighbours pass through unchanged. Clusters are stored in an arena and
addressed by ClusterID, which carries the index version so that ids from an
older build are rejected rather than resolved against the wrong hierarchy.

Above MaxZoom the raw nodes are shown, except that nodes sharing a pixel at
MaxZoom stay together as a terminal cluster whose expansion spiderfies.

# Query

	idx, err := cluster.New(nodes, cluster.DefaultConfig())
	features := idx.Query(bounds, zoom)
	for _, f := range features {
	    if f.IsCluster() {
	        exp, _ := idx.ExpandCluster(f.ID)
	        _ = exp.Children
	    }
	}

An Index is immutable after construction and safe for concurrent readers.
*/
package cluster
