// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"net/http"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/controller"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/spiderfy"
)

// ExpansionResponse is the result of opening a cluster one level.
type ExpansionResponse struct {
	ClusterID string `json:"cluster_id"`
	Zoom      int    `json:"zoom"`

	// Terminal clusters cannot be split by zooming; Leaves lists their nodes.
	Terminal bool `json:"terminal"`
	Spiderfy bool `json:"spiderfy"`

	Children *geojson.FeatureCollection `json:"children"`
	Leaves   []cluster.Node             `json:"leaves,omitempty"`
}

// SpiderfyResponse is the radial layout of a terminal cluster.
type SpiderfyResponse struct {
	ClusterID string                     `json:"cluster_id"`
	Legs      []spiderfy.Leg             `json:"legs"`
	GeoJSON   *geojson.FeatureCollection `json:"geojson"`
}

// Clusters returns the features for a bbox and zoom, for a camera given in
// the query, or for the controller's current camera.
//
// GET /api/v1/clusters?bbox=minLon,minLat,maxLon,maxLat&zoom=Z
// GET /api/v1/clusters?lon=&lat=&altitude=&aspect=&fov=
func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q, err := parseClustersQuery(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !validateRequest(w, r, &q) {
		return
	}

	var (
		features []cluster.Feature
		bound    orb.Bound
		zoom     int
	)

	if q.BBox != "" {
		if q.hasCamera() {
			rw.BadRequest("bbox cannot be combined with camera parameters")
			return
		}
		if q.Zoom == nil {
			rw.BadRequest("zoom is required with bbox")
			return
		}
		if bound, err = parseBBox(q.BBox); err != nil {
			rw.BadRequest(err.Error())
			return
		}
		zoom = *q.Zoom
		features = h.ctrl.QueryBounds(bound, zoom)
	} else {
		cam := q.camera(h.ctrl.Camera())
		if bound, err = geometry.VisibleBounds(cam); err != nil {
			writeDomainError(w, r, err)
			return
		}
		if features, err = h.ctrl.QueryCamera(cam); err != nil {
			writeDomainError(w, r, err)
			return
		}
		zoom = int(h.ctrl.Scale().AltitudeToZoom(cam.Altitude))
	}

	rw.GeoJSON(featureCollection(features, bound, zoom, h.indexVersion()))
}

// Cluster returns a single cluster as a GeoJSON feature.
//
// GET /api/v1/clusters/{id}
func (h *Handler) Cluster(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := h.clusterTarget(w, r)
	if !ok {
		return
	}
	f, err := idx.Cluster(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).GeoJSON(toGeoJSON(f))
}

// ClusterExpand returns the children of a cluster at its split zoom.
//
// GET /api/v1/clusters/{id}/expand
func (h *Handler) ClusterExpand(w http.ResponseWriter, r *http.Request) {
	id, err := clusterIDParam(r)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	exp, err := h.ctrl.Expand(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	children := geojson.NewFeatureCollection()
	for _, f := range exp.Children {
		children.Append(toGeoJSON(f))
	}
	WriteSuccess(w, r, ExpansionResponse{
		ClusterID: exp.ClusterID.String(),
		Zoom:      exp.Zoom,
		Terminal:  exp.Terminal(),
		Spiderfy:  exp.Spiderfy,
		Children:  children,
		Leaves:    exp.Leaves,
	})
}

// ClusterLeaves pages through the member nodes of a cluster.
//
// GET /api/v1/clusters/{id}/leaves?limit=100&offset=0
func (h *Handler) ClusterLeaves(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, idx, ok := h.clusterTarget(w, r)
	if !ok {
		return
	}

	var q LeavesQuery
	var err error
	if q.Limit, err = getIntParam(r, "limit", 100); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if q.Offset, err = getIntParam(r, "offset", 0); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !validateRequest(w, r, &q) {
		return
	}

	f, err := idx.Cluster(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	leaves, err := idx.Leaves(id, q.Limit, q.Offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	rw.SuccessWithPagination(leaves, &PaginationMeta{
		Total:   f.Count,
		Count:   len(leaves),
		Offset:  q.Offset,
		Limit:   q.Limit,
		HasMore: q.Offset+len(leaves) < f.Count,
	})
}

// ClusterMetrics returns size, extent and density of a cluster.
//
// GET /api/v1/clusters/{id}/metrics
func (h *Handler) ClusterMetrics(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := h.clusterTarget(w, r)
	if !ok {
		return
	}
	m, err := idx.ClusterMetrics(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, m)
}

// ClusterSpiderfy fans out a terminal cluster and enters the spiderfied
// state. Clusters that still split on zoom are rejected with 409.
//
// GET /api/v1/clusters/{id}/spiderfy
func (h *Handler) ClusterSpiderfy(w http.ResponseWriter, r *http.Request) {
	id, err := clusterIDParam(r)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	legs, err := h.ctrl.Spiderfy(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, SpiderfyResponse{
		ClusterID: id.String(),
		Legs:      legs,
		GeoJSON:   legsCollection(legs),
	})
}

// clusterTarget parses {id} and fetches the current index, writing the
// error response itself when either fails.
func (h *Handler) clusterTarget(w http.ResponseWriter, r *http.Request) (cluster.ClusterID, *cluster.Index, bool) {
	id, err := clusterIDParam(r)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return 0, nil, false
	}
	idx := h.ctrl.Index()
	if idx == nil {
		writeDomainError(w, r, controller.ErrNoIndex)
		return 0, nil, false
	}
	return id, idx, true
}

// indexVersion is zero while no index is built.
func (h *Handler) indexVersion() uint32 {
	if idx := h.ctrl.Index(); idx != nil {
		return idx.Version()
	}
	return 0
}
