// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package api provides the HTTP REST API for NodeGlobe.

The API is a thin layer over the view controller: it turns query parameters
into cameras and bounding boxes, asks the controller for features, and
encodes the result. It holds no clustering state of its own.

Endpoints:

	GET  /api/v1/health/live              process is up
	GET  /api/v1/health/ready             an index has been built
	GET  /api/v1/health                   poller, index and build details

	GET  /api/v1/clusters                 features for a bbox+zoom or a camera (GeoJSON)
	GET  /api/v1/clusters/{id}            one cluster as a GeoJSON feature
	GET  /api/v1/clusters/{id}/expand     children at the split zoom
	GET  /api/v1/clusters/{id}/leaves     member nodes, paginated
	GET  /api/v1/clusters/{id}/metrics    size, radius and density
	GET  /api/v1/clusters/{id}/spiderfy   radial layout of a terminal cluster

	GET  /api/v1/navigation               camera, state and spider legs
	PUT  /api/v1/navigation/camera        move the camera
	POST /api/v1/navigation/drill-in      zoom towards a cluster
	POST /api/v1/navigation/drill-out     zoom out one level
	POST /api/v1/navigation/unspiderfy    collapse spider legs

	GET  /api/v1/index/metrics            per-zoom cluster statistics
	GET  /api/v1/nodes/{ip}/history       stored samples for a node
	GET  /api/v1/nodes/{ip}/latest        newest sample for a node
	GET  /api/v1/debug/performance        route latency percentiles

	GET  /metrics                         Prometheus exposition

Every JSON response except GeoJSON collections uses the APIResponse
envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 1}
	}

Errors carry a machine-readable code:

	{
	  "success": false,
	  "error": {"code": "CLUSTER_NOT_FOUND", "message": "...", "request_id": "..."}
	}

GeoJSON endpoints return a bare FeatureCollection or Feature with
Content-Type application/geo+json so that map clients can consume them
directly. Cluster IDs are encoded as decimal strings because they do not fit
in a JavaScript number.
*/
package api
