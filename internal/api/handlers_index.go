// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"net/http"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/controller"
)

// IndexMetricsResponse summarizes one zoom level of the index.
type IndexMetricsResponse struct {
	cluster.LevelMetrics
	IndexVersion uint32 `json:"index_version"`
	NodeVersion  uint64 `json:"node_version"`
	TotalNodes   int    `json:"total_nodes"`
}

// IndexMetrics returns cluster statistics for a zoom level. The zoom
// defaults to the current camera's.
//
// GET /api/v1/index/metrics?zoom=Z
func (h *Handler) IndexMetrics(w http.ResponseWriter, r *http.Request) {
	idx := h.ctrl.Index()
	if idx == nil {
		writeDomainError(w, r, controller.ErrNoIndex)
		return
	}

	cur := int(h.ctrl.Scale().AltitudeToZoom(h.ctrl.Camera().Altitude))
	var q IndexMetricsQuery
	var err error
	if q.Zoom, err = getIntParam(r, "zoom", cur); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if !validateRequest(w, r, &q) {
		return
	}

	WriteSuccess(w, r, IndexMetricsResponse{
		LevelMetrics: idx.Metrics(q.Zoom),
		IndexVersion: idx.Version(),
		NodeVersion:  h.ctrl.Version(),
		TotalNodes:   idx.Len(),
	})
}

// Performance returns per-route latency statistics.
//
// GET /api/v1/debug/performance
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	if h.perf == nil {
		NewResponseWriter(w, r).NotFound("performance monitoring is disabled")
		return
	}
	WriteSuccess(w, r, h.perf.Stats())
}
