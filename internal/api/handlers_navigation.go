// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"net/http"

	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/controller"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/navigation"
	"github.com/tomtom215/nodeglobe/internal/spiderfy"
)

// ViewResponse describes the controller's view.
type ViewResponse struct {
	Camera       geometry.Camera `json:"camera"`
	Zoom         int             `json:"zoom"`
	State        string          `json:"state"`
	Legs         []spiderfy.Leg  `json:"legs,omitempty"`
	IndexVersion uint32          `json:"index_version"`
}

// TransitionResponse is returned by drill-in and drill-out. Steps are the
// camera positions a client animates through; the view fields describe
// where the transition ended.
type TransitionResponse struct {
	ViewResponse
	Steps    []navigation.Step          `json:"steps"`
	Features *geojson.FeatureCollection `json:"features"`
}

// CameraResponse is returned after moving the camera.
type CameraResponse struct {
	ViewResponse
	Features *geojson.FeatureCollection `json:"features"`
}

// View returns the current camera, interaction state and spider legs.
//
// GET /api/v1/navigation
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.view())
}

// SetCamera moves the camera. A running transition is cancelled and an open
// spider is closed.
//
// PUT /api/v1/navigation/camera
func (h *Handler) SetCamera(w http.ResponseWriter, r *http.Request) {
	var req CameraRequest
	if err := decodeJSONBody(r, &req); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	cam := req.Camera()
	features, err := h.ctrl.SetCamera(cam)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, CameraResponse{
		ViewResponse: h.view(),
		Features:     h.collectionFor(cam, features),
	})
}

// DrillIn flies the camera towards the zoom at which a cluster splits. A
// cluster whose members share a position ends the transition spiderfied.
//
// POST /api/v1/navigation/drill-in
func (h *Handler) DrillIn(w http.ResponseWriter, r *http.Request) {
	var req DrillInRequest
	if err := decodeJSONBody(r, &req); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}
	// Validated by the clusterid tag.
	id, _ := cluster.ParseClusterID(req.ClusterID)

	steps, err := h.ctrl.DrillIn(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, h.runTransition(steps))
}

// DrillOut flies the camera out by one zoom level.
//
// POST /api/v1/navigation/drill-out
func (h *Handler) DrillOut(w http.ResponseWriter, r *http.Request) {
	steps, err := h.ctrl.DrillOut()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, h.runTransition(steps))
}

// Unspiderfy collapses the spider legs, if any.
//
// POST /api/v1/navigation/unspiderfy
func (h *Handler) Unspiderfy(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Unspiderfy()
	WriteSuccess(w, r, h.view())
}

// runTransition advances the controller through every planned step. The
// server has no frame clock, so the camera lands on the target before the
// response is written.
func (h *Handler) runTransition(steps []navigation.Step) TransitionResponse {
	var last controller.Frame
	for {
		frame, ok := h.ctrl.Advance()
		if !ok {
			break
		}
		last = frame
		if frame.Done {
			break
		}
	}

	cam := h.ctrl.Camera()
	features := last.Features
	if features == nil {
		features = []cluster.Feature{}
	}
	if steps == nil {
		steps = []navigation.Step{}
	}
	return TransitionResponse{
		ViewResponse: h.view(),
		Steps:        steps,
		Features:     h.collectionFor(cam, features),
	}
}

func (h *Handler) view() ViewResponse {
	cam := h.ctrl.Camera()
	return ViewResponse{
		Camera:       cam,
		Zoom:         int(h.ctrl.Scale().AltitudeToZoom(cam.Altitude)),
		State:        h.ctrl.State().String(),
		Legs:         h.ctrl.Legs(),
		IndexVersion: h.indexVersion(),
	}
}

// collectionFor renders features seen from cam. Cameras here were already
// validated by the controller, so VisibleBounds cannot fail.
func (h *Handler) collectionFor(cam geometry.Camera, features []cluster.Feature) *geojson.FeatureCollection {
	bound, _ := geometry.VisibleBounds(cam)
	zoom := int(h.ctrl.Scale().AltitudeToZoom(cam.Altitude))
	return featureCollection(features, bound, zoom, h.indexVersion())
}
