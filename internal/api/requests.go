// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/geometry"
)

// ClustersQuery selects features either by bbox and zoom or by camera.
// Camera fields that are not given keep the controller's current values.
type ClustersQuery struct {
	BBox string `query:"bbox"`
	Zoom *int   `query:"zoom" validate:"omitempty,zoom"`

	Lon      *float64 `query:"lon" validate:"omitempty,finite,gte=-180,lte=180"`
	Lat      *float64 `query:"lat" validate:"omitempty,finite,gte=-90,lte=90"`
	Altitude *float64 `query:"altitude" validate:"omitempty,finite,gt=0"`
	Heading  *float64 `query:"heading" validate:"omitempty,finite"`
	Aspect   *float64 `query:"aspect" validate:"omitempty,finite,gt=0"`
	FOV      *float64 `query:"fov" validate:"omitempty,finite,gt=0,lt=180"`
}

// hasCamera reports whether any camera field was given.
func (q *ClustersQuery) hasCamera() bool {
	return q.Lon != nil || q.Lat != nil || q.Altitude != nil ||
		q.Heading != nil || q.Aspect != nil || q.FOV != nil
}

// camera overlays the given fields on base.
func (q *ClustersQuery) camera(base geometry.Camera) geometry.Camera {
	cam := base
	lon, lat := cam.Center.Lon(), cam.Center.Lat()
	if q.Lon != nil {
		lon = *q.Lon
	}
	if q.Lat != nil {
		lat = *q.Lat
	}
	cam.Center = orb.Point{lon, lat}
	if q.Altitude != nil {
		cam.Altitude = *q.Altitude
	}
	if q.Heading != nil {
		cam.Heading = *q.Heading
	}
	if q.Aspect != nil {
		cam.Aspect = *q.Aspect
	}
	if q.FOV != nil {
		cam.FOV = *q.FOV
	}
	return cam
}

// LeavesQuery pages through the members of a cluster.
type LeavesQuery struct {
	Limit  int `query:"limit" validate:"gte=1,lte=10000"`
	Offset int `query:"offset" validate:"gte=0"`
}

// IndexMetricsQuery selects the zoom to summarize.
type IndexMetricsQuery struct {
	Zoom int `query:"zoom" validate:"zoom"`
}

// HistoryQuery bounds a node history lookup.
type HistoryQuery struct {
	IP   string    `query:"ip" validate:"required,ip"`
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}

// CameraRequest is the body of PUT /navigation/camera.
type CameraRequest struct {
	Lon      float64 `json:"lon" validate:"finite,gte=-180,lte=180"`
	Lat      float64 `json:"lat" validate:"finite,gte=-90,lte=90"`
	Altitude float64 `json:"altitude" validate:"finite,gt=0"`
	Heading  float64 `json:"heading" validate:"finite"`
	Aspect   float64 `json:"aspect" validate:"finite,gt=0"`
	FOV      float64 `json:"fov" validate:"finite,gt=0,lt=180"`
}

// Camera converts the request.
func (c CameraRequest) Camera() geometry.Camera {
	return geometry.Camera{
		Center:   orb.Point{c.Lon, c.Lat},
		Altitude: c.Altitude,
		Heading:  c.Heading,
		Aspect:   c.Aspect,
		FOV:      c.FOV,
	}
}

// DrillInRequest is the body of POST /navigation/drill-in.
type DrillInRequest struct {
	ClusterID string `json:"cluster_id" validate:"required,clusterid"`
}
