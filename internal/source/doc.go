// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package source ingests provider node snapshots and hands them to the
clustering controller.

A snapshot is always a full replacement of the node set. The package is
organised as a small pipeline:

  - Source fetches raw Records. HTTPSource reads a JSON node list behind a
    token-bucket rate limiter and a circuit breaker.
  - Normalize turns Records into cluster.Node values. Nodes without a
    position are placed through a Resolver (GeoIPResolver reads a MaxMind
    city database); nodes that still cannot be placed are dropped and
    counted.
  - Fingerprint hashes the normalised set with xxhash. The result is the
    node-set version, so an unchanged feed never triggers a rebuild.
  - Poller runs the pipeline on an interval, pushes changed sets into the
    controller, stores the last good set in a SnapshotStore for warm boot,
    and appends one history sample per node per poll.

Feed Format:

The feed is either a bare JSON array or an object with a "nodes" array:

	[
	  {"id": "n1", "ip": "203.0.113.7", "lon": 13.4, "lat": 52.5,
	   "metadata": {"latency_ms": 21.5, "region": "eu"}}
	]

lon and lat are optional; when either is missing the node is placed by IP.
*/
package source
