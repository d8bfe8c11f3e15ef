// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package source

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"

	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/metrics"
)

var (
	// ErrUnexpectedStatus is returned when the feed answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected feed status")

	// ErrMalformedFeed is returned when the feed body cannot be decoded.
	ErrMalformedFeed = errors.New("malformed feed")

	// ErrNoSnapshot is returned by SnapshotStore.Load before the first save.
	ErrNoSnapshot = errors.New("no stored snapshot")
)

// Record is one node as reported by a feed.
type Record struct {
	ID       string         `json:"id"`
	IP       string         `json:"ip"`
	Lon      *float64       `json:"lon,omitempty"`
	Lat      *float64       `json:"lat,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Position returns the reported position, if both coordinates are present.
func (r Record) Position() (orb.Point, bool) {
	if r.Lon == nil || r.Lat == nil {
		return orb.Point{}, false
	}
	return orb.Point{*r.Lon, *r.Lat}, true
}

// Source yields full snapshots of the provider node set.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// Resolver places a node by IP address.
type Resolver interface {
	Resolve(ip string) (orb.Point, bool)
}

// Drop reasons recorded by Normalize.
const (
	dropMissingID       = "missing_id"
	dropNoPosition      = "no_position"
	dropInvalidPosition = "invalid_position"
	dropDuplicate       = "duplicate"
	dropLimit           = "limit"
)

// Normalize converts records into nodes sorted by ID. Records without an
// ID, with a duplicate ID, or without a usable position are dropped. A nil
// resolver leaves unpositioned records unplaced. maxNodes <= 0 means no
// limit.
func Normalize(records []Record, resolver Resolver, maxNodes int) []cluster.Node {
	dropped := make(map[string]int)
	seen := make(map[string]struct{}, len(records))
	nodes := make([]cluster.Node, 0, len(records))

	for _, r := range records {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			dropped[dropMissingID]++
			continue
		}
		if _, dup := seen[id]; dup {
			dropped[dropDuplicate]++
			continue
		}

		pos, ok := r.Position()
		if !ok && resolver != nil && r.IP != "" {
			pos, ok = resolver.Resolve(r.IP)
		}
		if !ok {
			dropped[dropNoPosition]++
			continue
		}
		if !validPosition(pos) {
			dropped[dropInvalidPosition]++
			continue
		}

		seen[id] = struct{}{}
		nodes = append(nodes, cluster.Node{
			ID:       id,
			IP:       strings.TrimSpace(r.IP),
			Position: orb.Point{geometry.NormalizeLon(pos[0]), pos[1]},
			Metadata: r.Metadata,
		})
	}

	slices.SortFunc(nodes, func(a, b cluster.Node) int { return strings.Compare(a.ID, b.ID) })
	if maxNodes > 0 && len(nodes) > maxNodes {
		dropped[dropLimit] += len(nodes) - maxNodes
		nodes = nodes[:maxNodes]
	}

	for reason, n := range dropped {
		metrics.RecordNodesDropped(reason, n)
	}
	return nodes
}

func validPosition(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p[1] >= -90 && p[1] <= 90
}
