// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built on first use and shared. Field names
// in messages come from json or query tags. Besides the built-in tags three
// custom tags are registered:
//
//   - clusterid: the string parses with cluster.ParseClusterID
//   - finite: a float field is neither NaN nor infinite
//   - zoom: an integer zoom level, including the raw-node band above the
//     deepest clustered zoom
//
// Usage:
//
//	type drillInRequest struct {
//	    ClusterID string  `json:"cluster_id" validate:"required,clusterid"`
//	    Altitude  float64 `json:"altitude" validate:"finite,gt=0"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    msg, details := verr.Summary()
//	    ...
//	}
package validation
