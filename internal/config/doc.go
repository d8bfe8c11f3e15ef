// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package config loads and validates NodeGlobe configuration.

Configuration is layered with Koanf v2, later layers overriding earlier ones:

 1. Defaults from defaultConfig()
 2. An optional YAML file: $CONFIG_PATH, else the first of DefaultConfigPaths
 3. Environment variables listed in the env mapping table

Unmapped environment variables are ignored.

# Sections

  - server: HTTP listener, CORS and rate limiting
  - logging: zerolog level and format
  - cluster: cluster index parameters (zoom range, radius, min points)
  - camera: zoom scale, initial view and prefetch margin
  - navigation: transition step counts
  - spiderfy: leg geometry in pixels
  - prefetch: adjacent-zoom prefetch cache
  - source: provider node feed polling
  - geoip: MaxMind database used to place nodes without coordinates
  - history: per-node metric history in BadgerDB

# Environment Variables

Commonly used variables:

  - HTTP_PORT, HTTP_HOST, CORS_ORIGINS
  - LOG_LEVEL, LOG_FORMAT
  - CLUSTER_MAX_ZOOM, CLUSTER_MIN_POINTS, CLUSTER_RADIUS, CLUSTER_RADIUS_DECAY, CLUSTER_CENTROID
  - PREFETCH_MARGIN_RATIO
  - SOURCE_URL, SOURCE_INTERVAL
  - GEOIP_DATABASE
  - HISTORY_PATH, HISTORY_RETENTION

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	opts := cfg.ControllerOptions()
*/
package config
