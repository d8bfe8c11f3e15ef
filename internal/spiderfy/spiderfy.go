// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

// Package spiderfy lays out nodes that share a position on concentric rings
// around that position so each gets its own marker.
package spiderfy

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/geometry"
)

// ErrInvalidConfig is returned for non-positive distances.
var ErrInvalidConfig = errors.New("invalid spiderfy config")

// Config sets ring geometry. Distances share one unit: degrees when used
// directly, pixels before ForZoom converts them.
type Config struct {
	// LegLength is the radius of the innermost ring.
	LegLength float64 `koanf:"leg_length"`

	// RingSpacing is added to the radius for every further ring.
	RingSpacing float64 `koanf:"ring_spacing"`

	// MinSeparation is the smallest arc between neighbours on a ring.
	MinSeparation float64 `koanf:"min_separation"`

	// StartAngle is the angle of the first leg in radians, counter-clockwise
	// from east.
	StartAngle float64 `koanf:"start_angle"`
}

// DefaultConfig returns pixel distances for use with ForZoom.
func DefaultConfig() Config {
	return Config{
		LegLength:     30,
		RingSpacing:   22,
		MinSeparation: 20,
		StartAngle:    math.Pi / 2,
	}
}

// Validate rejects non-positive or non-finite distances.
func (c Config) Validate() error {
	for _, f := range [...]struct {
		name  string
		value float64
	}{
		{"leg_length", c.LegLength},
		{"ring_spacing", c.RingSpacing},
		{"min_separation", c.MinSeparation},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}
	if math.IsNaN(c.StartAngle) || math.IsInf(c.StartAngle, 0) {
		return fmt.Errorf("%w: start_angle must be finite", ErrInvalidConfig)
	}
	return nil
}

// ForZoom converts pixel distances to degrees of longitude at zoom for tiles
// of the given extent.
func (c Config) ForZoom(zoom int, extent float64) Config {
	degPerPixel := 360 / geometry.WorldSize(extent, zoom)
	c.LegLength *= degPerPixel
	c.RingSpacing *= degPerPixel
	c.MinSeparation *= degPerPixel
	return c
}

// Leg places one node.
type Leg struct {
	Node cluster.Node `json:"node"`

	// Position is the displayed position; Anchor is the shared one.
	Position orb.Point `json:"position"`
	Anchor   orb.Point `json:"anchor"`

	Ring  int     `json:"ring"`
	Angle float64 `json:"angle"`
}

// Offset returns the displacement from the anchor.
func (l Leg) Offset() orb.Point {
	return orb.Point{l.Position.X() - l.Anchor.X(), l.Position.Y() - l.Anchor.Y()}
}

// Layout assigns every node a distinct position around center. Rings fill
// inside out; each ring holds as many legs as fit at MinSeparation, and the
// legs on a ring are spaced evenly. Latitude offsets are scaled by cos(lat)
// so rings stay round on a Mercator map. Output order follows input order.
func Layout(nodes []cluster.Node, center orb.Point, cfg Config) ([]Leg, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	legs := make([]Leg, len(nodes))
	if len(nodes) == 1 {
		legs[0] = Leg{Node: nodes[0], Position: center, Anchor: center}
		return legs, nil
	}

	cosLat := math.Cos(center.Lat() * math.Pi / 180)
	placed, ring := 0, 0
	for placed < len(nodes) {
		radius := cfg.LegLength + float64(ring)*cfg.RingSpacing
		n := min(ringCapacity(radius, cfg.MinSeparation), len(nodes)-placed)
		// Alternate rings are rotated half a slot so legs do not line up.
		offset := cfg.StartAngle + float64(ring%2)*math.Pi/float64(n)
		for k := 0; k < n; k++ {
			angle := offset + 2*math.Pi*float64(k)/float64(n)
			legs[placed] = Leg{
				Node:   nodes[placed],
				Anchor: center,
				Position: orb.Point{
					center.Lon() + radius*math.Cos(angle),
					center.Lat() + radius*math.Sin(angle)*cosLat,
				},
				Ring:  ring,
				Angle: angle,
			}
			placed++
		}
		ring++
	}
	return legs, nil
}

// ringCapacity is the number of legs that fit on a ring, at least two so
// that a pair always sits on opposite sides.
func ringCapacity(radius, separation float64) int {
	return max(2, int(math.Floor(2*math.Pi*radius/separation)))
}

// MaxRadius returns the outermost ring radius used for n nodes.
func MaxRadius(n int, cfg Config) float64 {
	if n <= 1 {
		return 0
	}
	ring := 0
	for placed := 0; ; ring++ {
		placed += ringCapacity(cfg.LegLength+float64(ring)*cfg.RingSpacing, cfg.MinSeparation)
		if placed >= n {
			break
		}
	}
	return cfg.LegLength + float64(ring)*cfg.RingSpacing
}
