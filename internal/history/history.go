// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

// Package history stores per-node metric samples over time.
//
// Every poll of the node source produces one Sample per node carrying the
// node's numeric metadata (latency, capacity, uptime and so on). Samples are
// keyed by node IP and time so a range query is a single prefix scan.
package history

import (
	"context"
	"errors"
	"net/netip"
	"time"

	"github.com/tomtom215/nodeglobe/internal/cluster"
)

var (
	// ErrInvalidIP is returned for an empty or unparsable node IP.
	ErrInvalidIP = errors.New("history: invalid node ip")

	// ErrInvalidRange is returned when to is before from or the range is
	// longer than the store allows.
	ErrInvalidRange = errors.New("history: invalid time range")

	// ErrNotFound is returned by Latest when a node has no samples.
	ErrNotFound = errors.New("history: no samples")
)

// Sample is one observation of a node.
type Sample struct {
	Time   time.Time          `json:"time"`
	NodeID string             `json:"node_id,omitempty"`
	Values map[string]float64 `json:"values"`
}

// Store persists samples per node IP.
type Store interface {
	// Append stores samples for ip.
	Append(ctx context.Context, ip string, samples ...Sample) error

	// Range returns the samples for ip with from <= Time <= to, oldest
	// first.
	Range(ctx context.Context, ip string, from, to time.Time) ([]Sample, error)

	// Latest returns the newest sample for ip.
	Latest(ctx context.Context, ip string) (Sample, error)
}

// SampleFromNode builds the sample a poll records for n. It reports false
// for nodes without numeric metadata or without an IP.
func SampleFromNode(n cluster.Node, at time.Time) (Sample, bool) {
	if n.IP == "" {
		return Sample{}, false
	}
	values := n.NumericMetadata()
	if len(values) == 0 {
		return Sample{}, false
	}
	return Sample{Time: at.UTC(), NodeID: n.ID, Values: values}, true
}

// parseIP normalises ip so v4 and v4-in-v6 spellings share a key.
func parseIP(ip string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return netip.Addr{}, errors.Join(ErrInvalidIP, err)
	}
	return addr.Unmap(), nil
}
