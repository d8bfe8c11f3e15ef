// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package navigation

import (
	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/geometry"
)

// DrillIn returns the target that centres a cluster at the zoom where it
// splits into its children.
func DrillIn(idx *cluster.Index, scale geometry.ZoomScale, id cluster.ClusterID) (Target, error) {
	f, err := idx.Cluster(id)
	if err != nil {
		return Target{}, err
	}
	z, err := idx.ExpansionZoom(id)
	if err != nil {
		return Target{}, err
	}
	return Target{
		Center:   f.Position,
		Altitude: scale.ZoomToAltitude(geometry.ZoomLevel(z)),
	}, nil
}

// DrillOut returns the target one zoom level above the camera, keeping the
// centre. At the minimum zoom the target is the band's representative
// altitude.
func DrillOut(cam geometry.Camera, scale geometry.ZoomScale) (Target, error) {
	if err := cam.Validate(); err != nil {
		return Target{}, err
	}
	z := scale.AltitudeToZoom(cam.Altitude)
	if z > scale.MinZoom {
		z--
	}
	return Target{
		Center:   cam.Center,
		Altitude: scale.ZoomToAltitude(z),
	}, nil
}
