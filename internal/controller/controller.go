// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nodeglobe/internal/cache"
	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/logging"
	"github.com/tomtom215/nodeglobe/internal/metrics"
	"github.com/tomtom215/nodeglobe/internal/navigation"
	"github.com/tomtom215/nodeglobe/internal/spiderfy"
)

var (
	// ErrNoIndex is returned by cluster operations while the controller is
	// degraded or has not received nodes yet.
	ErrNoIndex = errors.New("cluster index unavailable")

	// ErrNotTerminal is returned when spiderfying a cluster that can still
	// be split by zooming in.
	ErrNotTerminal = errors.New("cluster can be expanded by zooming")
)

// Options configures a Controller.
type Options struct {
	Cluster    cluster.Config
	Scale      geometry.ZoomScale
	Navigation navigation.Options

	// Spiderfy distances are in pixels; they are converted per zoom.
	Spiderfy spiderfy.Config

	// PrefetchMargin grows the visible bounds before prefetching.
	PrefetchMargin float64

	// PrefetchZooms is how many zoom levels above and below the camera are
	// prefetched. Zero disables prefetching.
	PrefetchZooms int

	PrefetchCacheSize int
	PrefetchTTL       time.Duration

	InitialCamera geometry.Camera
}

// DefaultOptions returns options matching the default configuration.
func DefaultOptions() Options {
	scale := geometry.DefaultZoomScale()
	scale.MaxZoom = geometry.ZoomLevel(cluster.DefaultConfig().MaxZoom + 1)
	return Options{
		Cluster:           cluster.DefaultConfig(),
		Scale:             scale,
		Navigation:        navigation.DefaultOptions(),
		Spiderfy:          spiderfy.DefaultConfig(),
		PrefetchMargin:    0.5,
		PrefetchZooms:     1,
		PrefetchCacheSize: 64,
		PrefetchTTL:       2 * time.Minute,
		InitialCamera: geometry.Camera{
			Center:   orb.Point{0, 20},
			Altitude: scale.ZoomToAltitude(scale.MinZoom),
			Aspect:   16.0 / 9.0,
			FOV:      60,
		},
	}
}

// Validate checks every nested configuration.
func (o Options) Validate() error {
	if err := o.Cluster.Validate(); err != nil {
		return err
	}
	if err := o.Scale.Validate(); err != nil {
		return err
	}
	if err := o.Navigation.Validate(); err != nil {
		return err
	}
	if err := o.Spiderfy.Validate(); err != nil {
		return err
	}
	if _, err := geometry.ExpandBounds(orb.Bound{}, o.PrefetchMargin); err != nil {
		return fmt.Errorf("prefetch margin: %w", err)
	}
	if o.PrefetchZooms < 0 {
		return fmt.Errorf("prefetch zooms must be >= 0, got %d", o.PrefetchZooms)
	}
	if err := o.InitialCamera.Validate(); err != nil {
		return fmt.Errorf("initial camera: %w", err)
	}
	return nil
}

// snapshot is one immutable (index, node set) pair.
type snapshot struct {
	index   *cluster.Index // nil while degraded
	nodes   []cluster.Node
	version uint64
	loaded  bool
	err     error
}

// drillTarget remembers the cluster a drill-in was started for.
type drillTarget struct {
	id           cluster.ClusterID
	indexVersion uint32
}

// Controller coordinates camera, index, prefetch and interaction state.
type Controller struct {
	opts Options
	log  zerolog.Logger

	current    atomic.Pointer[snapshot]
	camera     atomic.Pointer[geometry.Camera]
	generation atomic.Uint64
	indexSeq   atomic.Uint32

	// swapMu orders the generation check with the snapshot swap.
	swapMu sync.Mutex

	prefetch    *cache.LRU[prefetchKey, prefetchEntry]
	prefetching atomic.Bool
	background  sync.WaitGroup

	mu    sync.Mutex
	state State
	path  *navigation.Path
	drill *drillTarget
	legs  []spiderfy.Leg
}

// New creates a controller with an empty index.
func New(opts Options) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	empty, err := cluster.New(nil, opts.Cluster)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		opts:     opts,
		log:      logging.WithComponent("controller"),
		prefetch: cache.NewLRU[prefetchKey, prefetchEntry](opts.PrefetchCacheSize, opts.PrefetchTTL),
	}
	c.current.Store(&snapshot{index: empty})
	cam := opts.InitialCamera
	c.camera.Store(&cam)
	return c, nil
}

// needsRebuild reports whether version differs from the node set behind cur.
func needsRebuild(cur *snapshot, version uint64) bool {
	return cur == nil || !cur.loaded || cur.version != version
}

// SetNodes replaces the node set and rebuilds the index if version is new.
// The returned error is the build error; the controller then serves the
// raw nodes unclustered.
func (c *Controller) SetNodes(ctx context.Context, nodes []cluster.Node, version uint64) (BuildResult, error) {
	gen := c.generation.Add(1)
	return c.build(ctx, gen, nodes, version)
}

// AsyncResult carries the outcome of SetNodesAsync.
type AsyncResult struct {
	BuildResult
	Err error
}

// SetNodesAsync runs SetNodes in the background. Only the most recent
// request can be applied; older ones report Superseded.
func (c *Controller) SetNodesAsync(ctx context.Context, nodes []cluster.Node, version uint64) <-chan AsyncResult {
	gen := c.generation.Add(1)
	out := make(chan AsyncResult, 1)
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		res, err := c.build(ctx, gen, nodes, version)
		out <- AsyncResult{BuildResult: res, Err: err}
		close(out)
	}()
	return out
}

func (c *Controller) build(ctx context.Context, gen uint64, nodes []cluster.Node, version uint64) (BuildResult, error) {
	res := BuildResult{Version: version, Nodes: len(nodes)}
	if !needsRebuild(c.current.Load(), version) {
		res.Unchanged = true
		metrics.RecordIndexBuild(0, len(nodes), version, res.label())
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	start := time.Now()
	res.IndexVersion = c.indexSeq.Add(1)
	idx, buildErr := cluster.NewVersioned(nodes, c.opts.Cluster, res.IndexVersion)
	elapsed := time.Since(start)

	c.swapMu.Lock()
	if c.generation.Load() != gen {
		c.swapMu.Unlock()
		res.Superseded = true
		metrics.RecordIndexBuild(elapsed, len(nodes), version, res.label())
		c.log.Debug().Uint64("version", version).Msg("Discarding superseded index build")
		return res, nil
	}
	next := &snapshot{index: idx, nodes: slices.Clone(nodes), version: version, loaded: true, err: buildErr}
	c.current.Store(next)
	c.swapMu.Unlock()

	if buildErr != nil {
		res.Degraded = true
		metrics.RecordIndexBuild(elapsed, len(nodes), version, res.label())
		c.log.Warn().Err(buildErr).Int("nodes", len(nodes)).Msg("Index build failed, serving unclustered nodes")
	} else {
		res.Applied = true
		metrics.RecordIndexBuild(elapsed, len(nodes), version, res.label())
		c.log.Info().
			Int("nodes", len(nodes)).
			Uint64("version", version).
			Uint32("index_version", res.IndexVersion).
			Dur("duration", elapsed).
			Msg("Index rebuilt")
	}

	c.prefetch.RemoveFunc(func(k prefetchKey) bool { return k.indexVersion != res.IndexVersion })

	c.mu.Lock()
	if c.state == StateSpiderfied {
		c.transition(StateIdle)
	}
	c.mu.Unlock()
	return res, buildErr
}

// Index returns the current index, or nil while degraded.
func (c *Controller) Index() *cluster.Index {
	return c.current.Load().index
}

// Version returns the node-set version of the current snapshot.
func (c *Controller) Version() uint64 {
	return c.current.Load().version
}

// Loaded reports whether a node set has been applied.
func (c *Controller) Loaded() bool {
	return c.current.Load().loaded
}

// Degraded returns the last build error, if the controller is serving raw
// nodes.
func (c *Controller) Degraded() error {
	return c.current.Load().err
}

// Camera returns the current camera.
func (c *Controller) Camera() geometry.Camera {
	return *c.camera.Load()
}

// Scale returns the configured zoom scale.
func (c *Controller) Scale() geometry.ZoomScale {
	return c.opts.Scale
}

// State returns the interaction state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Legs returns the current spider legs while Spiderfied.
func (c *Controller) Legs() []spiderfy.Leg {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.legs)
}

// SetCamera moves the camera, cancelling any running transition and closing
// a spiderfied cluster, and returns the features now visible.
func (c *Controller) SetCamera(cam geometry.Camera) ([]cluster.Feature, error) {
	if err := cam.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.state == StateTransitioning && c.path != nil {
		c.path.Cancel()
	}
	c.transition(StateIdle)
	c.camera.Store(&cam)
	c.mu.Unlock()

	features, err := c.QueryCamera(cam)
	if err != nil {
		return nil, err
	}
	c.schedulePrefetch(cam)
	return features, nil
}

// Visible returns the features for the current camera.
func (c *Controller) Visible() ([]cluster.Feature, error) {
	return c.QueryCamera(c.Camera())
}

// QueryCamera returns the features visible from cam without moving the
// controller's camera.
func (c *Controller) QueryCamera(cam geometry.Camera) ([]cluster.Feature, error) {
	b, err := geometry.VisibleBounds(cam)
	if err != nil {
		return nil, err
	}
	return c.QueryBounds(b, int(c.opts.Scale.AltitudeToZoom(cam.Altitude))), nil
}

// QueryBounds returns the features inside b at zoom, preferring the
// prefetch cache and falling back to raw nodes while degraded.
func (c *Controller) QueryBounds(b orb.Bound, zoom int) []cluster.Feature {
	start := time.Now()
	snap := c.current.Load()

	if snap.index == nil {
		features := rawFeatures(snap.nodes, b)
		metrics.RecordQuery("fallback", time.Since(start), len(features))
		return features
	}

	if features, ok := c.lookupPrefetch(snap.index.Version(), zoom, b); ok {
		metrics.RecordPrefetchLookup(true)
		metrics.RecordQuery("prefetch", time.Since(start), len(features))
		return features
	}
	if c.opts.PrefetchZooms > 0 {
		metrics.RecordPrefetchLookup(false)
	}

	features := snap.index.Query(b, zoom)
	metrics.RecordQuery("index", time.Since(start), len(features))
	return features
}

// rawFeatures wraps every node inside b as a node feature.
func rawFeatures(nodes []cluster.Node, b orb.Bound) []cluster.Feature {
	out := make([]cluster.Feature, 0)
	wholeWorld := b.Max.Lon()-b.Min.Lon() >= 360
	for i := range nodes {
		p := nodes[i].Position
		if wholeWorld {
			if p.Lat() < b.Min.Lat() || p.Lat() > b.Max.Lat() {
				continue
			}
		} else if !containsWrapped(b, p) {
			continue
		}
		out = append(out, cluster.Feature{Kind: cluster.KindNode, Position: p, Count: 1, Node: &nodes[i]})
	}
	return out
}

// containsWrapped is b.Contains that also matches p shifted by a full turn,
// for bounds that extend past the antimeridian.
func containsWrapped(b orb.Bound, p orb.Point) bool {
	for _, shift := range [...]float64{0, 360, -360} {
		if b.Contains(orb.Point{p.Lon() + shift, p.Lat()}) {
			return true
		}
	}
	return false
}

// Expand opens a cluster one level.
func (c *Controller) Expand(id cluster.ClusterID) (cluster.Expansion, error) {
	idx := c.Index()
	if idx == nil {
		return cluster.Expansion{}, ErrNoIndex
	}
	exp, err := idx.ExpandCluster(id)
	switch {
	case err != nil:
		metrics.RecordExpansion("not_found")
	case exp.Spiderfy:
		metrics.RecordExpansion("spiderfy")
	case exp.Terminal():
		metrics.RecordExpansion("leaves")
	default:
		metrics.RecordExpansion("children")
	}
	return exp, err
}

// Close waits for background builds and prefetches to finish.
func (c *Controller) Close() {
	c.background.Wait()
}

func recordTransition(s State) {
	metrics.RecordStateTransition(s.String())
}
