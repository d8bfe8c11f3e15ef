// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package controller owns the camera and the current cluster index and ties
the clustering core together.

# Rebuilds

SetNodes rebuilds the index only when the node-set version changes. Every
request takes a generation number; a build that finishes after a newer
request was made is discarded, so the last request wins even when builds
overlap. A failed build keeps the raw nodes and queries degrade to
unclustered node features.

# Queries and Prefetch

Camera changes query the index for the visible bounds at the camera's zoom.
In the background the controller queries the adjacent zoom levels over the
visible bounds grown by the prefetch margin and stores the results in an
LRU keyed by (index version, zoom). A later query whose bounds lie inside a
cached box is answered by filtering the cached features.

# State Machine

	Idle --camera change--> Idle
	Idle --DrillIn/DrillOut--> Transitioning --path done--> Idle
	Transitioning --path done on coincident cluster--> Spiderfied
	Idle --Spiderfy--> Spiderfied --camera change--> Idle
	Transitioning --camera change--> Idle (path cancelled)

The index and camera are swapped atomically; the state machine is guarded
by a mutex so HTTP handlers and the poller can share one controller.
*/
package controller
