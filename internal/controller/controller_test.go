// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/metrics"
)

var world = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// shallowOptions keeps the level count small so transitions reach the
// finest level quickly.
func shallowOptions() Options {
	opts := DefaultOptions()
	opts.Cluster.MaxZoom = 2
	opts.Scale.MaxZoom = 3
	opts.Navigation.StepsPerZoom = 2
	opts.Navigation.MinSteps = 2
	return opts
}

func newController(t *testing.T, opts Options) *Controller {
	t.Helper()
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func gridNodes(n int) []cluster.Node {
	nodes := make([]cluster.Node, n)
	for i := range nodes {
		nodes[i] = cluster.Node{
			ID:       fmt.Sprintf("n%d", i),
			IP:       fmt.Sprintf("192.0.2.%d", i%250),
			Position: orb.Point{float64(i%36)*10 - 175, float64(i/36%16)*10 - 75},
		}
	}
	return nodes
}

func coincidentNodes() []cluster.Node {
	return []cluster.Node{
		{ID: "a", IP: "198.51.100.1", Position: orb.Point{13.4, 52.5}},
		{ID: "b", IP: "198.51.100.2", Position: orb.Point{13.4, 52.5}},
	}
}

func total(features []cluster.Feature) int {
	n := 0
	for _, f := range features {
		n += f.Count
	}
	return n
}

func firstCluster(t *testing.T, features []cluster.Feature) cluster.Feature {
	t.Helper()
	for _, f := range features {
		if f.IsCluster() {
			return f
		}
	}
	t.Fatalf("no cluster among %d features", len(features))
	return cluster.Feature{}
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"cluster", func(o *Options) { o.Cluster.MinPoints = 0 }},
		{"navigation", func(o *Options) { o.Navigation.StepsPerZoom = 0 }},
		{"margin", func(o *Options) { o.PrefetchMargin = -1 }},
		{"prefetch zooms", func(o *Options) { o.PrefetchZooms = -1 }},
		{"camera", func(o *Options) { o.InitialCamera.Altitude = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultOptions()
			tt.mutate(&opts)
			if _, err := New(opts); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestController_EmptyBeforeNodes(t *testing.T) {
	t.Parallel()

	c := newController(t, DefaultOptions())
	if c.Loaded() {
		t.Error("Loaded() = true before SetNodes")
	}
	features, err := c.Visible()
	if err != nil {
		t.Fatalf("Visible() error = %v", err)
	}
	if features == nil || len(features) != 0 {
		t.Errorf("Visible() = %v, want empty non-nil slice", features)
	}
}

func TestController_SetNodesVersionGate(t *testing.T) {
	t.Parallel()

	c := newController(t, DefaultOptions())
	ctx := context.Background()
	nodes := gridNodes(200)

	res, err := c.SetNodes(ctx, nodes, 7)
	if err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	if !res.Applied || res.Nodes != 200 {
		t.Errorf("SetNodes() = %+v, want applied with 200 nodes", res)
	}
	first := c.Index()

	res, err = c.SetNodes(ctx, nodes[:10], 7)
	if err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	if !res.Unchanged {
		t.Errorf("SetNodes() same version = %+v, want unchanged", res)
	}
	if c.Index() != first {
		t.Error("index replaced although version did not change")
	}

	if got := total(c.QueryBounds(world, 0)); got != 200 {
		t.Errorf("member total at zoom 0 = %d, want 200", got)
	}
}

func TestController_SupersededBuildDiscarded(t *testing.T) {
	t.Parallel()

	c := newController(t, DefaultOptions())
	ctx := context.Background()
	if _, err := c.SetNodes(ctx, gridNodes(5), 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}

	stale := c.generation.Add(1)
	c.generation.Add(1)
	res, err := c.build(ctx, stale, gridNodes(50), 2)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	if !res.Superseded {
		t.Errorf("build() = %+v, want superseded", res)
	}
	if c.Version() != 1 {
		t.Errorf("Version() = %d, want 1", c.Version())
	}
}

func TestController_SetNodesAsyncLastWriteWins(t *testing.T) {
	t.Parallel()

	c := newController(t, DefaultOptions())
	ctx := context.Background()
	first := c.SetNodesAsync(ctx, gridNodes(400), 1)
	second := c.SetNodesAsync(ctx, gridNodes(20), 2)

	r1, r2 := <-first, <-second
	if r1.Err != nil || r2.Err != nil {
		t.Fatalf("async errors = %v, %v", r1.Err, r2.Err)
	}
	if !r2.Applied {
		t.Errorf("latest build = %+v, want applied", r2.BuildResult)
	}
	if !r1.Applied && !r1.Superseded {
		t.Errorf("earlier build = %+v, want applied or superseded", r1.BuildResult)
	}
	if c.Version() != 2 {
		t.Errorf("Version() = %d, want 2", c.Version())
	}
	if got := c.Index().Len(); got != 20 {
		t.Errorf("Index().Len() = %d, want 20", got)
	}
}

func TestController_DegradesToRawNodes(t *testing.T) {
	t.Parallel()

	c := newController(t, DefaultOptions())
	nodes := append(gridNodes(30), cluster.Node{ID: "bad", Position: orb.Point{math.NaN(), 0}})

	res, err := c.SetNodes(context.Background(), nodes, 3)
	if !errors.Is(err, cluster.ErrInvalidNode) {
		t.Fatalf("SetNodes() error = %v, want ErrInvalidNode", err)
	}
	if !res.Degraded {
		t.Errorf("SetNodes() = %+v, want degraded", res)
	}
	if c.Index() != nil {
		t.Error("Index() != nil while degraded")
	}
	if c.Degraded() == nil {
		t.Error("Degraded() = nil, want build error")
	}

	features := c.QueryBounds(world, 0)
	if len(features) != 30 {
		t.Errorf("fallback features = %d, want 30", len(features))
	}
	for _, f := range features {
		if !f.IsNode() || f.Node == nil {
			t.Fatalf("fallback feature %+v is not a node", f)
		}
	}

	if _, err := c.Expand(1); !errors.Is(err, ErrNoIndex) {
		t.Errorf("Expand() error = %v, want ErrNoIndex", err)
	}

	if _, err := c.SetNodes(context.Background(), gridNodes(30), 4); err != nil {
		t.Fatalf("SetNodes() recovery error = %v", err)
	}
	if c.Index() == nil || c.Degraded() != nil {
		t.Error("controller did not recover after a valid node set")
	}
}

func TestController_StaleClusterID(t *testing.T) {
	t.Parallel()

	c := newController(t, DefaultOptions())
	ctx := context.Background()
	if _, err := c.SetNodes(ctx, gridNodes(300), 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	old := firstCluster(t, c.QueryBounds(world, 0))

	if _, err := c.SetNodes(ctx, gridNodes(300), 2); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	if _, err := c.Expand(old.ID); !errors.Is(err, cluster.ErrClusterNotFound) {
		t.Errorf("Expand(stale) error = %v, want ErrClusterNotFound", err)
	}
}

func TestController_DrillInTransition(t *testing.T) {
	t.Parallel()

	opts := shallowOptions()
	c := newController(t, opts)
	if _, err := c.SetNodes(context.Background(), gridNodes(300), 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	target := firstCluster(t, c.QueryBounds(world, 0))

	steps, err := c.DrillIn(target.ID)
	if err != nil {
		t.Fatalf("DrillIn() error = %v", err)
	}
	if len(steps) == 0 {
		t.Fatal("DrillIn() returned no steps")
	}
	if c.State() != StateTransitioning {
		t.Fatalf("State() = %v, want transitioning", c.State())
	}

	var last Frame
	frames := 0
	for {
		f, ok := c.Advance()
		if !ok {
			break
		}
		frames++
		last = f
	}
	if frames != len(steps) {
		t.Errorf("frames = %d, want %d", frames, len(steps))
	}
	if !last.Done || last.State != StateIdle {
		t.Errorf("last frame = done %v state %v, want done idle", last.Done, last.State)
	}
	if c.Camera().Center != target.Position {
		t.Errorf("camera centre = %v, want %v", c.Camera().Center, target.Position)
	}
	ez, err := c.Index().ExpansionZoom(target.ID)
	if err != nil {
		t.Fatalf("ExpansionZoom() error = %v", err)
	}
	want := opts.Scale.ZoomToAltitude(geometry.ZoomLevel(ez))
	if got := c.Camera().Altitude; got != want {
		t.Errorf("camera altitude = %v, want %v", got, want)
	}
}

func TestController_SetCameraCancelsTransition(t *testing.T) {
	t.Parallel()

	c := newController(t, shallowOptions())
	if _, err := c.SetNodes(context.Background(), gridNodes(300), 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	if _, err := c.DrillOut(); err != nil {
		t.Fatalf("DrillOut() error = %v", err)
	}
	if _, err := c.DrillIn(firstCluster(t, c.QueryBounds(world, 0)).ID); err != nil {
		t.Fatalf("DrillIn() error = %v", err)
	}
	if _, ok := c.Advance(); !ok {
		t.Fatal("Advance() = false on a fresh transition")
	}

	cam := c.Camera().WithView(orb.Point{10, 10}, 5e6)
	if _, err := c.SetCamera(cam); err != nil {
		t.Fatalf("SetCamera() error = %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %v, want idle", c.State())
	}
	if _, ok := c.Advance(); ok {
		t.Error("Advance() = true after the transition was cancelled")
	}
	if !c.Camera().Equal(cam) {
		t.Errorf("Camera() = %+v, want %+v", c.Camera(), cam)
	}
}

func TestController_SetCameraRejectsNonFinite(t *testing.T) {
	t.Parallel()

	c := newController(t, DefaultOptions())
	cam := c.Camera()
	cam.Altitude = math.Inf(1)
	if _, err := c.SetCamera(cam); !errors.Is(err, geometry.ErrNonFiniteCamera) {
		t.Errorf("SetCamera() error = %v, want ErrNonFiniteCamera", err)
	}
}

func TestController_DrillIntoCoincidentSpiderfies(t *testing.T) {
	t.Parallel()

	opts := shallowOptions()
	c := newController(t, opts)
	if _, err := c.SetNodes(context.Background(), coincidentNodes(), 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	target := firstCluster(t, c.QueryBounds(world, opts.Cluster.MaxZoom))

	if _, err := c.DrillIn(target.ID); err != nil {
		t.Fatalf("DrillIn() error = %v", err)
	}
	var last Frame
	for {
		f, ok := c.Advance()
		if !ok {
			break
		}
		last = f
	}

	if last.State != StateSpiderfied || c.State() != StateSpiderfied {
		t.Fatalf("state = %v / %v, want spiderfied", last.State, c.State())
	}
	legs := c.Legs()
	if len(legs) != 2 {
		t.Fatalf("Legs() = %d, want 2", len(legs))
	}
	a, b := legs[0].Offset(), legs[1].Offset()
	if a.X()*b.X()+a.Y()*b.Y() >= 0 {
		t.Errorf("leg offsets %v and %v are not opposite", a, b)
	}

	if _, err := c.SetCamera(c.Camera()); err != nil {
		t.Fatalf("SetCamera() error = %v", err)
	}
	if c.State() != StateIdle || c.Legs() != nil {
		t.Errorf("after camera move state = %v legs = %v, want idle without legs", c.State(), c.Legs())
	}
}

func TestController_DeepestZoomKeepsCoincidentTogether(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	c := newController(t, opts)
	p := orb.Point{13.405, 52.52}
	nodes := []cluster.Node{{ID: "a", Position: p}, {ID: "b", Position: p}}
	if _, err := c.SetNodes(context.Background(), nodes, 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}

	cam := c.Camera().WithView(p, opts.Scale.ZoomToAltitude(opts.Scale.MaxZoom))
	features, err := c.SetCamera(cam)
	if err != nil {
		t.Fatalf("SetCamera() error = %v", err)
	}
	if int(opts.Scale.MaxZoom) <= opts.Cluster.MaxZoom {
		t.Fatalf("camera max zoom %d does not reach past cluster max zoom %d", opts.Scale.MaxZoom, opts.Cluster.MaxZoom)
	}

	seen := map[orb.Point]bool{}
	for _, f := range features {
		if seen[f.Position] {
			t.Errorf("two features at %v", f.Position)
		}
		seen[f.Position] = true
	}
	if len(features) != 1 || !features[0].IsCluster() || features[0].Count != 2 {
		t.Fatalf("SetCamera() features = %+v, want one cluster of 2", features)
	}

	legs, err := c.Spiderfy(features[0].ID)
	if err != nil {
		t.Fatalf("Spiderfy() error = %v", err)
	}
	if len(legs) != 2 || c.State() != StateSpiderfied {
		t.Fatalf("Spiderfy() = %d legs, state %v; want 2 legs, spiderfied", len(legs), c.State())
	}
	if legs[0].Position == legs[1].Position {
		t.Errorf("legs share position %v", legs[0].Position)
	}
}

func TestController_Spiderfy(t *testing.T) {
	t.Parallel()

	opts := shallowOptions()
	c := newController(t, opts)
	if _, err := c.SetNodes(context.Background(), coincidentNodes(), 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}

	fine := firstCluster(t, c.QueryBounds(world, opts.Cluster.MaxZoom))
	legs, err := c.Spiderfy(fine.ID)
	if err != nil {
		t.Fatalf("Spiderfy() error = %v", err)
	}
	if len(legs) != 2 || c.State() != StateSpiderfied {
		t.Fatalf("Spiderfy() = %d legs, state %v", len(legs), c.State())
	}

	// A new node set closes the spider.
	if _, err := c.SetNodes(context.Background(), coincidentNodes()[:1], 2); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("State() after rebuild = %v, want idle", c.State())
	}

	c.Unspiderfy()
	if c.State() != StateIdle {
		t.Errorf("State() = %v, want idle", c.State())
	}
}

func TestController_SpiderfyNotTerminal(t *testing.T) {
	t.Parallel()

	opts := shallowOptions()
	c := newController(t, opts)
	if _, err := c.SetNodes(context.Background(), gridNodes(300), 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	coarse := firstCluster(t, c.QueryBounds(world, 0))
	if coarse.Zoom >= opts.Cluster.MaxZoom {
		t.Fatalf("cluster formed at zoom %d, want below %d", coarse.Zoom, opts.Cluster.MaxZoom)
	}
	if _, err := c.Spiderfy(coarse.ID); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("Spiderfy() error = %v, want ErrNotTerminal", err)
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %v, want idle", c.State())
	}
}

func TestController_PrefetchServesQueries(t *testing.T) {
	t.Parallel()

	c := newController(t, DefaultOptions())
	if _, err := c.SetNodes(context.Background(), gridNodes(500), 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	cam := c.Camera().WithView(orb.Point{10, 20}, 4e6)

	if written := c.prefetchAround(cam); written != 3 {
		t.Fatalf("prefetchAround() = %d entries, want 3", written)
	}
	if written := c.prefetchAround(cam); written != 0 {
		t.Errorf("second prefetchAround() = %d entries, want 0", written)
	}

	visible, err := geometry.VisibleBounds(cam)
	if err != nil {
		t.Fatalf("VisibleBounds() error = %v", err)
	}
	zoom := int(c.opts.Scale.AltitudeToZoom(cam.Altitude))

	hits := testutil.ToFloat64(metrics.PrefetchCacheHits)
	got := c.QueryBounds(visible, zoom)
	if testutil.ToFloat64(metrics.PrefetchCacheHits) <= hits {
		t.Error("visible query did not hit the prefetch cache")
	}
	want := c.Index().Query(visible, zoom)
	if total(got) != total(want) || len(got) != len(want) {
		t.Errorf("cached query = %d features (%d members), index = %d (%d)",
			len(got), total(got), len(want), total(want))
	}

	if _, err := c.SetNodes(context.Background(), gridNodes(100), 2); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	if n := c.prefetch.Len(); n != 0 {
		t.Errorf("prefetch entries after rebuild = %d, want 0", n)
	}
}

func TestController_PrefetchMissOutsideCachedBounds(t *testing.T) {
	t.Parallel()

	c := newController(t, DefaultOptions())
	if _, err := c.SetNodes(context.Background(), gridNodes(500), 1); err != nil {
		t.Fatalf("SetNodes() error = %v", err)
	}
	cam := c.Camera().WithView(orb.Point{10, 20}, 4e6)
	c.prefetchAround(cam)

	far := orb.Bound{Min: orb.Point{-120, -40}, Max: orb.Point{-100, -20}}
	if _, ok := c.lookupPrefetch(c.Index().Version(), 3, far); ok {
		t.Error("lookupPrefetch() served bounds outside the cached area")
	}
	wrapped := orb.Bound{Min: orb.Point{170, 0}, Max: orb.Point{190, 10}}
	if _, ok := c.lookupPrefetch(c.Index().Version(), 3, wrapped); ok {
		t.Error("lookupPrefetch() served bounds crossing the antimeridian")
	}
}

func TestClampWorld(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   orb.Bound
		want orb.Bound
	}{
		{"inside", orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}, orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}},
		{"east edge", orb.Bound{Min: orb.Point{170, 80}, Max: orb.Point{190, 95}}, orb.Bound{Min: orb.Point{170, 80}, Max: orb.Point{180, 90}}},
		{"shifted turn", orb.Bound{Min: orb.Point{350, 0}, Max: orb.Point{370, 10}}, orb.Bound{Min: orb.Point{-10, 0}, Max: orb.Point{10, 10}}},
		{"whole world", orb.Bound{Min: orb.Point{-300, -90}, Max: orb.Point{300, 90}}, world},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := clampWorld(tt.in); got != tt.want {
				t.Errorf("clampWorld(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[State]string{
		StateIdle:          "idle",
		StateTransitioning: "transitioning",
		StateSpiderfied:    "spiderfied",
		State(9):           "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
