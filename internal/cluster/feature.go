// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package cluster

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
)

// Node is a single provider endpoint. The index never mutates it.
type Node struct {
	// ID is the node's stable public key.
	ID string `json:"id"`

	IP string `json:"ip"`

	// Position is lon/lat in degrees.
	Position orb.Point `json:"position"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// Kind tags a Feature as a node or a cluster.
type Kind uint8

const (
	KindNode Kind = iota + 1
	KindCluster
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindCluster:
		return "cluster"
	default:
		return "unknown"
	}
}

// ClusterID addresses a cluster in one specific index build. The high 32
// bits hold the index version and the low 32 bits the arena slot.
type ClusterID uint64

func newClusterID(version uint32, slot int32) ClusterID {
	return ClusterID(uint64(version)<<32 | uint64(uint32(slot)))
}

func (id ClusterID) version() uint32 { return uint32(id >> 32) }
func (id ClusterID) slot() int32     { return int32(uint32(id)) }

func (id ClusterID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseClusterID parses the decimal form produced by String.
func ParseClusterID(s string) (ClusterID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cluster id %q: %w", s, err)
	}
	return ClusterID(v), nil
}

// Feature is either a node or a cluster at a given zoom.
type Feature struct {
	Kind Kind

	// Position is the node position or the cluster centroid (lon/lat).
	Position orb.Point

	// Count is 1 for nodes and the member count for clusters.
	Count int

	// Cluster-only fields.
	ID    ClusterID
	Level int
	Zoom  int

	// Node is set for node features and points into the index's copy.
	Node *Node
}

// IsCluster reports whether f is a cluster.
func (f Feature) IsCluster() bool { return f.Kind == KindCluster }

// IsNode reports whether f is a single node.
func (f Feature) IsNode() bool { return f.Kind == KindNode }

// ClusterLevel returns the hierarchy depth of a cluster feature: 1 for a
// cluster of nodes, one more than its deepest child otherwise. It panics for
// node features.
func ClusterLevel(f Feature) int {
	if f.Kind != KindCluster {
		panic(fmt.Sprintf("cluster: ClusterLevel called on %s feature", f.Kind))
	}
	return f.Level
}
