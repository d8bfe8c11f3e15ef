// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/spiderfy"
)

// goccyCodec routes orb/geojson encoding through goccy/go-json.
type goccyCodec struct{}

func (goccyCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (goccyCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func init() {
	geojson.CustomJSONMarshaler = goccyCodec{}
	geojson.CustomJSONUnmarshaler = goccyCodec{}
}

// featureCollection renders features visible in bound at zoom. The
// collection carries the zoom and index version as foreign members so that
// clients can drop responses from a superseded index.
func featureCollection(features []cluster.Feature, bound orb.Bound, zoom int, indexVersion uint32) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.BBox = geojson.NewBBox(bound)
	for _, f := range features {
		fc.Append(toGeoJSON(f))
	}
	fc.ExtraMembers = geojson.Properties{
		"zoom":          zoom,
		"index_version": indexVersion,
		"count":         len(features),
	}
	return fc
}

// toGeoJSON converts one feature. Clusters use the property names common to
// web map clustering layers (cluster, cluster_id, point_count).
func toGeoJSON(f cluster.Feature) *geojson.Feature {
	gf := geojson.NewFeature(f.Position)

	if f.IsCluster() {
		id := f.ID.String()
		gf.ID = id
		gf.Properties["cluster"] = true
		gf.Properties["cluster_id"] = id
		gf.Properties["point_count"] = f.Count
		gf.Properties["point_count_abbreviated"] = abbreviateCount(f.Count)
		gf.Properties["level"] = f.Level
		gf.Properties["zoom"] = f.Zoom
		return gf
	}

	gf.Properties["cluster"] = false
	if f.Node != nil {
		gf.ID = f.Node.ID
		gf.Properties["id"] = f.Node.ID
		gf.Properties["ip"] = f.Node.IP
		if len(f.Node.Metadata) > 0 {
			gf.Properties["metadata"] = f.Node.Metadata
		}
	}
	return gf
}

// legsCollection renders spider legs as points at their displayed position
// plus a line back to the shared anchor.
func legsCollection(legs []spiderfy.Leg) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, leg := range legs {
		pt := geojson.NewFeature(leg.Position)
		pt.ID = leg.Node.ID
		pt.Properties["id"] = leg.Node.ID
		pt.Properties["ip"] = leg.Node.IP
		pt.Properties["ring"] = leg.Ring
		pt.Properties["angle"] = leg.Angle
		fc.Append(pt)

		line := geojson.NewFeature(orb.LineString{leg.Anchor, leg.Position})
		line.Properties["leg"] = leg.Node.ID
		fc.Append(line)
	}
	return fc
}

// abbreviateCount shortens large counts for map labels: 950, 1.2k, 34k, 2.1M.
func abbreviateCount(n int) string {
	switch {
	case n < 1000:
		return strconv.Itoa(n)
	case n < 10_000:
		return strconv.FormatFloat(float64(n)/1000, 'f', 1, 64) + "k"
	case n < 1_000_000:
		return strconv.Itoa(n/1000) + "k"
	default:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	}
}
