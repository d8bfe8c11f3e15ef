// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func testCamera() Camera {
	return Camera{
		Center:   orb.Point{13.4, 52.5},
		Altitude: 1_000_000,
		Aspect:   16.0 / 9.0,
		FOV:      60,
	}
}

func TestAltitudeToZoom_Monotone(t *testing.T) {
	t.Parallel()

	s := DefaultZoomScale()
	prev := s.AltitudeToZoom(0)
	for a := 1.0; a < 1e9; a *= 1.37 {
		z := s.AltitudeToZoom(a)
		if z > prev {
			t.Fatalf("AltitudeToZoom(%v) = %d, greater than %d at a lower altitude", a, z, prev)
		}
		prev = z
	}
}

func TestAltitudeToZoom_Saturates(t *testing.T) {
	t.Parallel()

	s := ZoomScale{MinZoom: 2, MaxZoom: 10, BaseAltitude: EarthCircumference}
	tests := []struct {
		name     string
		altitude float64
		want     ZoomLevel
	}{
		{"zero", 0, 10},
		{"negative", -5, 10},
		{"tiny", 1e-9, 10},
		{"huge", 1e12, 2},
		{"infinite", math.Inf(1), 2},
		{"nan", math.NaN(), 2},
		{"base", EarthCircumference, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.AltitudeToZoom(tt.altitude); got != tt.want {
				t.Errorf("AltitudeToZoom(%v) = %d, want %d", tt.altitude, got, tt.want)
			}
		})
	}
}

func TestZoomToAltitude_RoundTrip(t *testing.T) {
	t.Parallel()

	s := DefaultZoomScale()
	for z := s.MinZoom; z <= s.MaxZoom; z++ {
		if got := s.AltitudeToZoom(s.ZoomToAltitude(z)); got != z {
			t.Errorf("AltitudeToZoom(ZoomToAltitude(%d)) = %d", z, got)
		}
	}

	if got, want := s.ZoomToAltitude(s.MaxZoom+5), s.ZoomToAltitude(s.MaxZoom); got != want {
		t.Errorf("ZoomToAltitude above max = %v, want %v", got, want)
	}
}

func TestZoomScale_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultZoomScale().Validate(); err != nil {
		t.Fatalf("DefaultZoomScale().Validate() = %v", err)
	}
	bad := []ZoomScale{
		{MinZoom: -1, MaxZoom: 3, BaseAltitude: 1},
		{MinZoom: 4, MaxZoom: 3, BaseAltitude: 1},
		{MinZoom: 0, MaxZoom: 3, BaseAltitude: 0},
		{MinZoom: 0, MaxZoom: 3, BaseAltitude: math.NaN()},
	}
	for _, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", s)
		}
	}
}

func TestCamera_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Camera)
		wantErr error
	}{
		{"valid", func(*Camera) {}, nil},
		{"nan altitude", func(c *Camera) { c.Altitude = math.NaN() }, ErrNonFiniteCamera},
		{"inf lon", func(c *Camera) { c.Center[0] = math.Inf(-1) }, ErrNonFiniteCamera},
		{"zero altitude", func(c *Camera) { c.Altitude = 0 }, ErrInvalidCamera},
		{"zero aspect", func(c *Camera) { c.Aspect = 0 }, ErrInvalidCamera},
		{"flat fov", func(c *Camera) { c.FOV = 180 }, ErrInvalidCamera},
		{"latitude", func(c *Camera) { c.Center[1] = 91 }, ErrInvalidCamera},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := testCamera()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVisibleBounds(t *testing.T) {
	t.Parallel()

	c := testCamera()
	b, err := VisibleBounds(c)
	if err != nil {
		t.Fatalf("VisibleBounds() error = %v", err)
	}
	if !b.Contains(c.Center) {
		t.Errorf("bounds %v do not contain centre %v", b, c.Center)
	}
	if b.Max.X()-b.Min.X() <= b.Max.Y()-b.Min.Y() {
		t.Errorf("wide viewport produced narrow bounds %v", b)
	}

	again, _ := VisibleBounds(c)
	if !again.Equal(b) {
		t.Errorf("VisibleBounds not stable: %v vs %v", again, b)
	}

	// Lower altitude sees less ground.
	low := c
	low.Altitude /= 10
	lb, _ := VisibleBounds(low)
	if lb.Max.X()-lb.Min.X() >= b.Max.X()-b.Min.X() {
		t.Errorf("lower camera bounds %v not smaller than %v", lb, b)
	}
}

func TestVisibleBounds_Rotation(t *testing.T) {
	t.Parallel()

	c := testCamera()
	c.Center = orb.Point{0, 0}
	north, _ := VisibleBounds(c)
	c.Heading = 90
	east, _ := VisibleBounds(c)

	wN := north.Max.X() - north.Min.X()
	hE := east.Max.Y() - east.Min.Y()
	if math.Abs(wN-hE) > 1e-9 {
		t.Errorf("rotated height = %v, want %v", hE, wN)
	}
}

func TestVisibleBounds_Edges(t *testing.T) {
	t.Parallel()

	tiny := testCamera()
	tiny.Altitude = 1e-9
	b, err := VisibleBounds(tiny)
	if err != nil {
		t.Fatalf("VisibleBounds(tiny) error = %v", err)
	}
	if b.Max.X() <= b.Min.X() || b.Max.Y() <= b.Min.Y() {
		t.Errorf("tiny altitude produced empty bounds %v", b)
	}

	pole := testCamera()
	pole.Center = orb.Point{0, 89.9}
	b, _ = VisibleBounds(pole)
	if b.Max.Y() > MaxLatitude || b.Min.Y() >= b.Max.Y() {
		t.Errorf("polar bounds %v exceed Mercator limit", b)
	}

	space := testCamera()
	space.Altitude = 1e9
	b, _ = VisibleBounds(space)
	if b.Min.X() != -180 || b.Max.X() != 180 {
		t.Errorf("far camera lon span = [%v, %v], want whole world", b.Min.X(), b.Max.X())
	}

	bad := testCamera()
	bad.FOV = math.NaN()
	if _, err := VisibleBounds(bad); !errors.Is(err, ErrNonFiniteCamera) {
		t.Errorf("VisibleBounds(NaN fov) error = %v, want %v", err, ErrNonFiniteCamera)
	}
}

func TestExpandBounds(t *testing.T) {
	t.Parallel()

	b := orb.Bound{Min: orb.Point{-10, -5}, Max: orb.Point{10, 5}}

	same, err := ExpandBounds(b, 0)
	if err != nil || !same.Equal(b) {
		t.Errorf("ExpandBounds(b, 0) = %v, %v; want %v", same, err, b)
	}

	grown, err := ExpandBounds(b, 0.5)
	if err != nil {
		t.Fatalf("ExpandBounds() error = %v", err)
	}
	want := orb.Bound{Min: orb.Point{-15, -7.5}, Max: orb.Point{15, 7.5}}
	if !grown.Equal(want) {
		t.Errorf("ExpandBounds(b, 0.5) = %v, want %v", grown, want)
	}

	point := orb.Bound{Min: orb.Point{3, 3}, Max: orb.Point{3, 3}}
	pg, _ := ExpandBounds(point, 0.1)
	if !(pg.Min.X() < 3 && pg.Max.X() > 3 && pg.Min.Y() < 3 && pg.Max.Y() > 3) {
		t.Errorf("degenerate bound did not strictly grow: %v", pg)
	}

	for _, r := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		if _, err := ExpandBounds(b, r); !errors.Is(err, ErrNegativeMargin) {
			t.Errorf("ExpandBounds(b, %v) error = %v, want %v", r, err, ErrNegativeMargin)
		}
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	t.Parallel()

	for _, p := range []orb.Point{{0, 0}, {-179.9, 80}, {120.5, -33.3}} {
		x, y := ProjectX(p.Lon()), ProjectY(p.Lat())
		if x < 0 || x > 1 || y < 0 || y > 1 {
			t.Errorf("projection of %v = (%v, %v), outside unit square", p, x, y)
		}
		if lon := UnprojectX(x); math.Abs(lon-p.Lon()) > 1e-9 {
			t.Errorf("UnprojectX(ProjectX(%v)) = %v", p.Lon(), lon)
		}
		if lat := UnprojectY(y); math.Abs(lat-p.Lat()) > 1e-9 {
			t.Errorf("UnprojectY(ProjectY(%v)) = %v", p.Lat(), lat)
		}
	}
	if y := ProjectY(90); y != 0 {
		t.Errorf("ProjectY(90) = %v, want 0", y)
	}
}

func TestNormalizeLon(t *testing.T) {
	t.Parallel()

	tests := map[float64]float64{0: 0, 180: -180, 190: -170, -190: 170, 540: -180, -180: -180}
	for in, want := range tests {
		if got := NormalizeLon(in); got != want {
			t.Errorf("NormalizeLon(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestDistanceAndArea(t *testing.T) {
	t.Parallel()

	// One degree of longitude on the equator.
	d := DistanceKm(orb.Point{0, 0}, orb.Point{1, 0})
	if math.Abs(d-111.19) > 0.1 {
		t.Errorf("DistanceKm = %v, want ~111.19", d)
	}

	if a := AreaKm2(orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{1, 1}}); a != 0 {
		t.Errorf("AreaKm2(point) = %v, want 0", a)
	}
	a := AreaKm2(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}})
	if a < 12000 || a > 12500 {
		t.Errorf("AreaKm2(1x1 degree) = %v, want ~12364", a)
	}

	r := MaxDistanceKm(orb.Point{0, 0}, orb.Bound{Min: orb.Point{-1, 0}, Max: orb.Point{1, 0}})
	if math.Abs(r-d) > 1e-6 {
		t.Errorf("MaxDistanceKm = %v, want %v", r, d)
	}
}
