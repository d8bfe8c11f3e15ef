// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/validation"
)

// maxRequestBodySize bounds JSON request bodies.
const maxRequestBodySize = 64 << 10

// validateRequest validates v and writes a 400 response on failure. It
// reports whether the handler may continue.
func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	msg, details := verr.Summary()
	NewResponseWriter(w, r).ValidationError(msg, details)
	return false
}

// decodeJSONBody decodes a bounded JSON body into v, rejecting unknown
// fields and trailing data.
func decodeJSONBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize+1))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// clusterIDParam parses the {id} URL parameter.
func clusterIDParam(r *http.Request) (cluster.ClusterID, error) {
	raw := chi.URLParam(r, "id")
	id, err := cluster.ParseClusterID(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid cluster id %q", raw)
	}
	return id, nil
}

// getIntParam returns the integer query parameter name or def when absent.
func getIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

// getIntPtrParam is getIntParam that distinguishes absent from zero.
func getIntPtrParam(r *http.Request, name string) (*int, error) {
	if r.URL.Query().Get(name) == "" {
		return nil, nil
	}
	v, err := getIntParam(r, name, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// getFloatPtrParam returns nil when name is absent. Validation of the value
// itself is left to the struct tags.
func getFloatPtrParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}

// getTimeParam parses an RFC3339 query parameter, returning def when absent.
func getTimeParam(r *http.Request, name string, def time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC3339 timestamp", name)
	}
	return t, nil
}

// parseBBox parses "minLon,minLat,maxLon,maxLat". minLon may exceed maxLon
// for boxes that cross the antimeridian.
func parseBBox(raw string) (orb.Bound, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return orb.Bound{}, errors.New("bbox must be minLon,minLat,maxLon,maxLat")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return orb.Bound{}, fmt.Errorf("bbox value %q is not a finite number", p)
		}
		v[i] = f
	}
	if v[1] < -90 || v[3] > 90 || v[1] > v[3] {
		return orb.Bound{}, errors.New("bbox latitudes must satisfy -90 <= minLat <= maxLat <= 90")
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// parseClustersQuery reads the /clusters query parameters.
func parseClustersQuery(r *http.Request) (ClustersQuery, error) {
	q := ClustersQuery{BBox: r.URL.Query().Get("bbox")}

	var err error
	if q.Zoom, err = getIntPtrParam(r, "zoom"); err != nil {
		return q, err
	}
	for _, f := range []struct {
		name string
		dst  **float64
	}{
		{"lon", &q.Lon},
		{"lat", &q.Lat},
		{"altitude", &q.Altitude},
		{"heading", &q.Heading},
		{"aspect", &q.Aspect},
		{"fov", &q.FOV},
	} {
		if *f.dst, err = getFloatPtrParam(r, f.name); err != nil {
			return q, err
		}
	}
	return q, nil
}
