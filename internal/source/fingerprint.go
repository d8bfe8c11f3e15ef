// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package source

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/nodeglobe/internal/cluster"
)

// Fingerprint returns the content version of nodes. It covers ids, ips,
// positions and metadata, and depends on order; Normalize sorts by ID so
// equal feeds hash equally.
func Fingerprint(nodes []cluster.Node) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, n := range nodes {
		_, _ = d.WriteString(n.ID)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(n.IP)
		_, _ = d.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(n.Position[0]))
		_, _ = d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(n.Position[1]))
		_, _ = d.Write(buf[:])
		if len(n.Metadata) > 0 {
			// Map keys are encoded in sorted order.
			if meta, err := json.Marshal(n.Metadata); err == nil {
				_, _ = d.Write(meta)
			}
		}
		_, _ = d.Write([]byte{0xff})
	}
	return d.Sum64()
}
