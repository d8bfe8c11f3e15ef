// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package controller

import (
	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/navigation"
	"github.com/tomtom215/nodeglobe/internal/spiderfy"
)

// State is the interaction state of the view.
type State int

const (
	StateIdle State = iota
	StateTransitioning
	StateSpiderfied
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTransitioning:
		return "transitioning"
	case StateSpiderfied:
		return "spiderfied"
	default:
		return "unknown"
	}
}

// Frame is what one Advance call produces.
type Frame struct {
	Step     navigation.Step
	Camera   geometry.Camera
	Features []cluster.Feature
	State    State

	// Legs is set when the transition ended on a coincident cluster.
	Legs []spiderfy.Leg

	// Done is set on the last frame of a transition.
	Done bool
}

// BuildResult describes what happened to one SetNodes request.
type BuildResult struct {
	// Version is the node-set version that was requested.
	Version uint64

	// IndexVersion is stamped into the ClusterIDs of the new index.
	IndexVersion uint32

	Nodes int

	Applied    bool
	Unchanged  bool
	Superseded bool
	Degraded   bool
}

func (r BuildResult) label() string {
	switch {
	case r.Unchanged:
		return "unchanged"
	case r.Superseded:
		return "superseded"
	case r.Degraded:
		return "failed"
	default:
		return "applied"
	}
}

// transition moves to next and records it. Callers hold c.mu.
func (c *Controller) transition(next State) {
	if c.state == next {
		return
	}
	c.log.Debug().Str("from", c.state.String()).Str("to", next.String()).Msg("State transition")
	c.state = next
	recordTransition(next)
	if next != StateTransitioning {
		c.path = nil
		c.drill = nil
	}
	if next != StateSpiderfied {
		c.legs = nil
	}
}
