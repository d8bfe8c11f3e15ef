// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package main is the entry point for the NodeGlobe server.

NodeGlobe polls a feed of provider nodes, places each node on the globe
(from the feed's coordinates or a MaxMind City lookup), and serves a
multi-level cluster index over a JSON/GeoJSON API. The server also owns the
camera used for drill-in and drill-out navigation and spiderfies clusters
whose members share a location at the deepest zoom.

# Application Architecture

The server runs under a Suture v4 supervision tree:

	RootSupervisor ("nodeglobe")
	├── DataSupervisor ("data-layer")
	│   └── History compactor (BadgerDB value log GC)
	├── IngestSupervisor ("ingest-layer")
	│   └── Node poller (feed -> controller, snapshots, history)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Storage: BadgerDB for node history and the last good snapshot
 4. GeoIP: optional MaxMind City database
 5. Controller: cluster index, camera and navigation state
 6. Poller: HTTP feed with rate limiting and a circuit breaker
 7. HTTP Server: chi router with CORS, rate limiting and compression

# Configuration

Configuration is layered (highest priority wins):
  - Environment variables
  - Config file (CONFIG_PATH, ./config.yaml, /etc/nodeglobe/config.yaml)
  - Built-in defaults

Commonly used variables:
  - SOURCE_URL: node feed endpoint; empty disables polling
  - GEOIP_ENABLED, GEOIP_DATABASE: MaxMind City lookups for nodes without coordinates
  - HISTORY_ENABLED, HISTORY_PATH, HISTORY_RETENTION: per-node history
  - CLUSTER_MAX_ZOOM, CLUSTER_RADIUS: clustering shape
  - HTTP_PORT, LOG_LEVEL, LOG_FORMAT

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the poller and compactor stop, and BadgerDB and the
GeoIP reader are closed.

# Example Usage

	export SOURCE_URL=https://feeds.example.net/nodes.json
	export GEOIP_ENABLED=true
	export GEOIP_DATABASE=/data/GeoLite2-City.mmdb
	./nodeglobe

	curl 'http://localhost:8742/api/v1/clusters?bbox=-180,-85,180,85&zoom=2'
*/
package main
