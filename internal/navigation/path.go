// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

// Package navigation builds the camera keyframes for drill-in and drill-out
// transitions.
//
// A Path is a plain iterator: the consumer calls Next until it reports
// false, and cancelling a transition is simply stopping. Altitude follows a
// geometric interpolation so every zoom level takes the same share of the
// steps; the centre eases in and out along the shorter way around the
// globe.
package navigation

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/geometry"
)

// ErrInvalidTarget is returned for a target that is non-finite or has a
// non-positive altitude.
var ErrInvalidTarget = errors.New("invalid navigation target")

// Target is where a transition ends.
type Target struct {
	Center   orb.Point `json:"center"`
	Altitude float64   `json:"altitude"`
}

// Step is one keyframe of a Path.
type Step struct {
	Index    int       `json:"index"`
	Center   orb.Point `json:"center"`
	Altitude float64   `json:"altitude"`
}

// Options controls how many steps a path has.
type Options struct {
	// StepsPerZoom is the number of steps spent per doubling of altitude.
	StepsPerZoom int `koanf:"steps_per_zoom"`

	MinSteps int `koanf:"min_steps"`
	MaxSteps int `koanf:"max_steps"`
}

// DefaultOptions returns the step counts used when nothing is configured.
func DefaultOptions() Options {
	return Options{StepsPerZoom: 4, MinSteps: 4, MaxSteps: 60}
}

// Validate checks the step bounds.
func (o Options) Validate() error {
	if o.StepsPerZoom < 1 {
		return fmt.Errorf("navigation: steps_per_zoom must be >= 1, got %d", o.StepsPerZoom)
	}
	if o.MinSteps < 1 || o.MaxSteps < o.MinSteps {
		return fmt.Errorf("navigation: need 1 <= min_steps (%d) <= max_steps (%d)", o.MinSteps, o.MaxSteps)
	}
	return nil
}

// Path is a finite, restartable sequence of steps. It is not safe for
// concurrent use.
type Path struct {
	steps    []Step
	next     int
	canceled bool
}

// BuildPath returns the keyframes from the camera's current view to target.
// The last step equals target exactly. A camera already at target yields a
// single step.
func BuildPath(from geometry.Camera, to Target, opts Options) (*Path, error) {
	if err := from.Validate(); err != nil {
		return nil, fmt.Errorf("navigation from: %w", err)
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if from.Center.Equal(to.Center) && from.Altitude == to.Altitude {
		return &Path{steps: []Step{{Index: 0, Center: to.Center, Altitude: to.Altitude}}}, nil
	}

	n := stepCount(from.Altitude, to.Altitude, opts)
	lo, hi := math.Min(from.Altitude, to.Altitude), math.Max(from.Altitude, to.Altitude)
	ratio := to.Altitude / from.Altitude
	dLon := shortestDelta(from.Center.Lon(), to.Center.Lon())
	dLat := to.Center.Lat() - from.Center.Lat()

	steps := make([]Step, n)
	for i := range steps {
		t := float64(i+1) / float64(n)
		s := smoothstep(t)
		alt := from.Altitude * math.Pow(ratio, t)
		steps[i] = Step{
			Index: i,
			Center: orb.Point{
				geometry.NormalizeLon(from.Center.Lon() + dLon*s),
				from.Center.Lat() + dLat*s,
			},
			Altitude: math.Max(lo, math.Min(hi, alt)),
		}
	}
	steps[n-1].Center = to.Center
	steps[n-1].Altitude = to.Altitude
	return &Path{steps: steps}, nil
}

// Validate reports whether the target can end a path.
func (t Target) Validate() error {
	for _, v := range []float64{t.Center.Lon(), t.Center.Lat(), t.Altitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %w", ErrInvalidTarget, geometry.ErrNonFiniteCamera)
		}
	}
	if t.Altitude <= 0 {
		return fmt.Errorf("%w: altitude must be positive, got %v", ErrInvalidTarget, t.Altitude)
	}
	return nil
}

func stepCount(from, to float64, opts Options) int {
	zooms := math.Abs(math.Log2(to / from))
	n := int(math.Ceil(zooms * float64(opts.StepsPerZoom)))
	return max(opts.MinSteps, min(n, opts.MaxSteps))
}

// shortestDelta returns the signed longitude change from a to b that takes
// the shorter way round, in (-180, 180].
func shortestDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	switch {
	case d > 180:
		d -= 360
	case d <= -180:
		d += 360
	}
	return d
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Next returns the next step. It reports false once the path is exhausted
// or cancelled.
func (p *Path) Next() (Step, bool) {
	if p.canceled || p.next >= len(p.steps) {
		return Step{}, false
	}
	s := p.steps[p.next]
	p.next++
	return s, true
}

// Cancel stops the path. Subsequent Next calls report false until Reset.
func (p *Path) Cancel() { p.canceled = true }

// Reset rewinds the path to its first step.
func (p *Path) Reset() {
	p.next = 0
	p.canceled = false
}

// Done reports whether Next would return false.
func (p *Path) Done() bool { return p.canceled || p.next >= len(p.steps) }

// Canceled reports whether Cancel was called since the last Reset.
func (p *Path) Canceled() bool { return p.canceled }

// Len returns the number of steps.
func (p *Path) Len() int { return len(p.steps) }

// Steps returns a copy of every step regardless of iteration state.
func (p *Path) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Last returns the final step, which equals the target.
func (p *Path) Last() Step { return p.steps[len(p.steps)-1] }

// All iterates the remaining steps, advancing the path.
func (p *Path) All() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for {
			s, ok := p.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}
