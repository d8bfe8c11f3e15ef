// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"errors"
	"time"

	"github.com/tomtom215/nodeglobe/internal/controller"
	"github.com/tomtom215/nodeglobe/internal/history"
	"github.com/tomtom215/nodeglobe/internal/middleware"
	"github.com/tomtom215/nodeglobe/internal/source"
)

// PollerStatus reports the state of the node poller.
type PollerStatus interface {
	Status() source.Status
}

// HandlerOptions wires the handler to the rest of the application.
type HandlerOptions struct {
	Controller *controller.Controller

	// History is nil when history storage is disabled.
	History history.Store

	// Poller is nil when no node source is configured.
	Poller PollerStatus

	// Performance is nil when the debug endpoint is disabled.
	Performance *middleware.PerformanceMonitor

	Version string
}

// Handler serves every API endpoint.
type Handler struct {
	ctrl      *controller.Controller
	history   history.Store
	poller    PollerStatus
	perf      *middleware.PerformanceMonitor
	version   string
	startTime time.Time
}

// NewHandler creates a handler. A controller is required.
func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Controller == nil {
		return nil, errors.New("api: controller is required")
	}
	return &Handler{
		ctrl:      opts.Controller,
		history:   opts.History,
		poller:    opts.Poller,
		perf:      opts.Performance,
		version:   opts.Version,
		startTime: time.Now(),
	}, nil
}
