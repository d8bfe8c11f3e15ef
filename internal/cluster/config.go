// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package cluster

import "math"

// CentroidMode selects how a cluster position is derived from its members.
type CentroidMode string

const (
	// CentroidCountWeighted weights each child by its member count.
	CentroidCountWeighted CentroidMode = "count-weighted"

	// CentroidUniform averages child positions regardless of size.
	CentroidUniform CentroidMode = "uniform"
)

// MaxSupportedZoom is the deepest clustered zoom; it keeps pixel
// quantisation inside int64.
const MaxSupportedZoom = 30

// Config controls how the hierarchy is built.
type Config struct {
	// MinZoom and MaxZoom bound the levels that get clusters. Queries above
	// MaxZoom return raw nodes.
	MinZoom int `koanf:"min_zoom"`
	MaxZoom int `koanf:"max_zoom"`

	// MinPoints is the smallest member count that forms a cluster.
	MinPoints int `koanf:"min_points"`

	// Radius is the merge radius in pixels.
	Radius float64 `koanf:"radius"`

	// Extent is the tile size in pixels the radius is measured against.
	Extent float64 `koanf:"extent"`

	// RadiusDecay is the factor the radius shrinks by per zoom level.
	RadiusDecay float64 `koanf:"radius_decay"`

	Centroid CentroidMode `koanf:"centroid"`

	// NodeSize is the KD-tree leaf bucket size.
	NodeSize int `koanf:"node_size"`
}

// DefaultConfig returns the build parameters used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MinZoom:     0,
		MaxZoom:     16,
		MinPoints:   2,
		Radius:      40,
		Extent:      512,
		RadiusDecay: 2,
		Centroid:    CentroidCountWeighted,
		NodeSize:    64,
	}
}

// Validate returns a *ConfigError for the first unusable field.
func (c Config) Validate() error {
	switch {
	case c.MaxZoom < 0 || c.MaxZoom > MaxSupportedZoom:
		return &ConfigError{Field: "max_zoom", Value: c.MaxZoom, Reason: "must be in [0, 30]"}
	case c.MinZoom < 0 || c.MinZoom > c.MaxZoom:
		return &ConfigError{Field: "min_zoom", Value: c.MinZoom, Reason: "must be in [0, max_zoom]"}
	case c.MinPoints < 1:
		return &ConfigError{Field: "min_points", Value: c.MinPoints, Reason: "must be at least 1"}
	case math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) || c.Radius < 0:
		return &ConfigError{Field: "radius", Value: c.Radius, Reason: "must be a finite non-negative number"}
	case math.IsNaN(c.Extent) || math.IsInf(c.Extent, 0) || c.Extent <= 0:
		return &ConfigError{Field: "extent", Value: c.Extent, Reason: "must be positive"}
	case math.IsNaN(c.RadiusDecay) || math.IsInf(c.RadiusDecay, 0) || c.RadiusDecay < 1:
		return &ConfigError{Field: "radius_decay", Value: c.RadiusDecay, Reason: "must be >= 1"}
	case c.Centroid != CentroidCountWeighted && c.Centroid != CentroidUniform:
		return &ConfigError{Field: "centroid", Value: c.Centroid, Reason: "must be count-weighted or uniform"}
	case c.NodeSize < 1:
		return &ConfigError{Field: "node_size", Value: c.NodeSize, Reason: "must be at least 1"}
	}
	return nil
}

// radiusAt returns the merge radius in unit-square coordinates at zoom z.
func (c Config) radiusAt(z int) float64 {
	return c.Radius / (c.Extent * math.Pow(c.RadiusDecay, float64(z)))
}
