// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package supervisor provides process supervision for NodeGlobe using suture v4.

# Overview

Long-running components are grouped into three child supervisors so a
failure in one layer restarts only that layer:

	RootSupervisor ("nodeglobe")
	├── DataSupervisor ("data-layer")
	│   └── CompactorService (history value-log GC, if HISTORY_ENABLED)
	├── IngestSupervisor ("ingest-layer")
	│   └── PollerService (node source, if SOURCE_URL is set)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The cluster controller itself is not a service. It is a plain value shared
by the poller (writer) and the HTTP handlers (readers); when the poller
crashes the API keeps serving the last built index.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddIngestService(services.NewPollerService(poller))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)

# Failure Handling

Each layer counts failures with exponential decay (FailureDecay seconds).
When the count exceeds FailureThreshold the layer waits FailureBackoff
before the next restart. Services return ctx.Err() on shutdown and any other
error to request a restart.

# Debugging Shutdown Issues

Services that miss ShutdownTimeout are listed by UnstoppedServiceReport.

# See Also

  - internal/supervisor/services: service wrappers
  - github.com/thejerf/suture/v4: underlying library
*/
package supervisor
