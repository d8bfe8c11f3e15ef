// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package geometry holds the camera and map maths shared by the clustering
index, the navigation path builder and the spiderfier.

# Overview

The package provides:
  - Camera state and its validation
  - Altitude to zoom level conversion (ZoomScale)
  - Visible bounds computation from a camera
  - Bounds expansion for prefetching
  - Web Mercator projection to the unit square
  - Great-circle distances and areas (golang/geo s2)

All functions are pure and safe for concurrent use.

# Zoom Bands

A ZoomScale splits altitude into bands that halve per zoom level:

	zoom z covers (BaseAltitude / 2^(z+1), BaseAltitude / 2^z]

ZoomToAltitude returns the geometric centre of a band so that
AltitudeToZoom(ZoomToAltitude(z)) == z for every configured zoom.

# Longitude Wrapping

VisibleBounds may return longitudes beyond +/-180 when the view crosses the
antimeridian. Consumers normalise and split such boxes (see cluster.Index.Query).
*/
package geometry
