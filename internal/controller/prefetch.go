// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package controller

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/metrics"
)

type prefetchKey struct {
	indexVersion uint32
	zoom         int
}

// prefetchEntry holds the features of one zoom inside bounds.
type prefetchEntry struct {
	bounds   orb.Bound
	features []cluster.Feature
}

// lookupPrefetch serves b from the cache when an entry for (version, zoom)
// covers it. Bounds outside [-180, 180] always miss.
func (c *Controller) lookupPrefetch(version uint32, zoom int, b orb.Bound) ([]cluster.Feature, bool) {
	if c.opts.PrefetchZooms == 0 || b.Min.Lon() < -180 || b.Max.Lon() > 180 {
		return nil, false
	}
	e, ok := c.prefetch.Get(prefetchKey{indexVersion: version, zoom: c.clampZoom(zoom)})
	if !ok || !geometry.ContainsBound(e.bounds, b) {
		return nil, false
	}
	out := make([]cluster.Feature, 0, len(e.features))
	for _, f := range e.features {
		if b.Contains(f.Position) {
			out = append(out, f)
		}
	}
	return out, true
}

// schedulePrefetch warms the cache around cam in the background. A request
// arriving while a pass is running is dropped.
func (c *Controller) schedulePrefetch(cam geometry.Camera) {
	if c.opts.PrefetchZooms == 0 {
		return
	}
	if !c.prefetching.CompareAndSwap(false, true) {
		metrics.PrefetchRuns.WithLabelValues("skipped").Inc()
		return
	}
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		defer c.prefetching.Store(false)
		c.prefetchAround(cam)
	}()
}

// prefetchAround queries the expanded view at the camera's zoom and its
// neighbours and stores the results. It returns the number of entries
// written.
func (c *Controller) prefetchAround(cam geometry.Camera) int {
	snap := c.current.Load()
	if snap.index == nil {
		return 0
	}
	idx := snap.index

	visible, err := geometry.VisibleBounds(cam)
	if err != nil {
		return 0
	}
	b, err := geometry.ExpandBounds(visible, c.opts.PrefetchMargin)
	if err != nil {
		return 0
	}
	b = clampWorld(b)

	center := int(c.opts.Scale.AltitudeToZoom(cam.Altitude))
	written := 0
	seen := make(map[int]bool)
	for dz := -c.opts.PrefetchZooms; dz <= c.opts.PrefetchZooms; dz++ {
		z := c.clampZoom(center + dz)
		if seen[z] {
			continue
		}
		seen[z] = true

		key := prefetchKey{indexVersion: idx.Version(), zoom: z}
		if e, ok := c.prefetch.Get(key); ok && geometry.ContainsBound(e.bounds, b) {
			continue
		}
		if c.current.Load() != snap {
			metrics.PrefetchRuns.WithLabelValues("stale").Inc()
			return written
		}
		c.prefetch.Add(key, prefetchEntry{bounds: b, features: idx.Query(b, z)})
		written++
	}
	metrics.PrefetchRuns.WithLabelValues("completed").Inc()
	c.log.Debug().Int("zoom", center).Int("entries", written).Msg("Prefetch pass finished")
	return written
}

// clampZoom maps zoom onto the levels the index actually stores.
func (c *Controller) clampZoom(zoom int) int {
	return max(c.opts.Cluster.MinZoom, min(zoom, c.opts.Cluster.MaxZoom+1))
}

func clampWorld(b orb.Bound) orb.Bound {
	if b.Max.Lon()-b.Min.Lon() >= 360 {
		b.Min[0], b.Max[0] = -180, 180
	}
	mid := (b.Min.Lon() + b.Max.Lon()) / 2
	shift := geometry.NormalizeLon(mid) - mid
	b.Min[0] += shift
	b.Max[0] += shift

	b.Min[0] = math.Max(-180, b.Min.Lon())
	b.Max[0] = math.Min(180, b.Max.Lon())
	b.Min[1] = math.Max(-90, b.Min.Lat())
	b.Max[1] = math.Min(90, b.Max.Lat())
	return b
}
