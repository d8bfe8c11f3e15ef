// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/nodeglobe/internal/source"
)

// HealthStatus is the detailed health report.
type HealthStatus struct {
	// Status is "healthy", "degraded" (serving raw nodes) or "starting"
	// (no nodes received yet).
	Status  string  `json:"status"`
	Version string  `json:"version,omitempty"`
	Uptime  float64 `json:"uptime_seconds"`

	IndexLoaded  bool   `json:"index_loaded"`
	IndexVersion uint32 `json:"index_version"`
	NodeVersion  uint64 `json:"node_version"`
	Nodes        int    `json:"nodes"`
	Degraded     string `json:"degraded,omitempty"`
	ViewState    string `json:"view_state"`

	HistoryEnabled bool           `json:"history_enabled"`
	Poller         *source.Status `json:"poller,omitempty"`
}

// Health returns the detailed health report.
//
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	hs := HealthStatus{
		Status:         "healthy",
		Version:        h.version,
		Uptime:         time.Since(h.startTime).Seconds(),
		IndexLoaded:    h.ctrl.Loaded(),
		IndexVersion:   h.indexVersion(),
		NodeVersion:    h.ctrl.Version(),
		ViewState:      h.ctrl.State().String(),
		HistoryEnabled: h.history != nil,
	}
	if idx := h.ctrl.Index(); idx != nil {
		hs.Nodes = idx.Len()
	}
	if err := h.ctrl.Degraded(); err != nil {
		hs.Status = "degraded"
		hs.Degraded = err.Error()
	} else if !hs.IndexLoaded {
		hs.Status = "starting"
	}
	if h.poller != nil {
		st := h.poller.Status()
		hs.Poller = &st
	}
	WriteSuccess(w, r, hs)
}

// HealthLive reports that the process is serving requests.
//
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether a node set has been loaded. A degraded
// controller still serves raw nodes and counts as ready.
//
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.ctrl.Loaded() {
		NewResponseWriter(w, r).ServiceUnavailable(ErrCodeServiceUnavailable, "no node set loaded yet")
		return
	}
	WriteSuccess(w, r, map[string]interface{}{
		"ready":         true,
		"node_version":  h.ctrl.Version(),
		"index_version": h.indexVersion(),
	})
}
