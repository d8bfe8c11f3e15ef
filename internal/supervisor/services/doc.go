// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package services provides suture.Service wrappers for NodeGlobe components.

Each wrapper translates a component lifecycle into suture's Serve pattern:

  - HTTPServerService: ListenAndServe plus graceful Shutdown
  - PollerService: source.Poller Start/Stop
  - CompactorService: history.Compactor Start/Stop

Serve returns ctx.Err() on shutdown and a wrapped error when the component
fails to start, which makes the supervisor restart it with backoff.
*/
package services
