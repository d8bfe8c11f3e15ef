// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package controller

import (
	"fmt"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/navigation"
	"github.com/tomtom215/nodeglobe/internal/spiderfy"
)

// DrillIn starts a transition towards the zoom at which cluster id splits.
// It returns the planned steps; the camera moves as Advance is called.
func (c *Controller) DrillIn(id cluster.ClusterID) ([]navigation.Step, error) {
	idx := c.Index()
	if idx == nil {
		return nil, ErrNoIndex
	}
	target, err := navigation.DrillIn(idx, c.opts.Scale, id)
	if err != nil {
		return nil, err
	}
	path, err := navigation.BuildPath(c.Camera(), target, c.opts.Navigation)
	if err != nil {
		return nil, err
	}
	c.begin(path, &drillTarget{id: id, indexVersion: idx.Version()})
	return path.Steps(), nil
}

// DrillOut starts a transition one zoom level out from the current camera.
func (c *Controller) DrillOut() ([]navigation.Step, error) {
	cam := c.Camera()
	target, err := navigation.DrillOut(cam, c.opts.Scale)
	if err != nil {
		return nil, err
	}
	path, err := navigation.BuildPath(cam, target, c.opts.Navigation)
	if err != nil {
		return nil, err
	}
	c.begin(path, nil)
	return path.Steps(), nil
}

func (c *Controller) begin(path *navigation.Path, drill *drillTarget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.path != nil {
		c.path.Cancel()
	}
	c.transition(StateTransitioning)
	c.path = path
	c.drill = drill
	c.legs = nil
}

// Advance consumes one step of the running transition, moves the camera and
// returns the resulting frame. It reports false when no transition is
// running. The last frame ends in Idle, or in Spiderfied when the drilled
// cluster cannot be split any further.
func (c *Controller) Advance() (Frame, bool) {
	c.mu.Lock()
	if c.state != StateTransitioning || c.path == nil {
		state := c.state
		c.mu.Unlock()
		return Frame{State: state}, false
	}
	step, ok := c.path.Next()
	if !ok {
		c.transition(StateIdle)
		c.mu.Unlock()
		return Frame{State: StateIdle}, false
	}

	cam := c.Camera().WithView(step.Center, step.Altitude)
	c.camera.Store(&cam)

	frame := Frame{Step: step, Camera: cam}
	if c.path.Done() {
		frame.Done = true
		drill := c.drill
		c.transition(StateIdle)
		if drill != nil {
			if legs, err := c.arrive(*drill); err != nil {
				c.log.Debug().Err(err).Stringer("cluster", drill.id).Msg("Drill target gone on arrival")
			} else if legs != nil {
				c.transition(StateSpiderfied)
				c.legs = legs
				frame.Legs = legs
			}
		}
	}
	frame.State = c.state
	c.mu.Unlock()

	features, err := c.QueryCamera(cam)
	if err != nil {
		c.log.Warn().Err(err).Msg("Query failed during transition")
	}
	frame.Features = features
	return frame, true
}

// arrive returns spider legs when the drilled cluster ended up terminal and
// coincident, or nil when it split normally.
func (c *Controller) arrive(d drillTarget) ([]spiderfy.Leg, error) {
	idx := c.Index()
	if idx == nil || idx.Version() != d.indexVersion {
		return nil, cluster.ErrClusterNotFound
	}
	exp, err := c.Expand(d.id)
	if err != nil {
		return nil, err
	}
	if !exp.Spiderfy {
		return nil, nil
	}
	return c.layout(idx, d.id, exp.Leaves)
}

// Spiderfy fans out the members of a terminal cluster and enters the
// Spiderfied state. Clusters that still split on zoom return ErrNotTerminal.
func (c *Controller) Spiderfy(id cluster.ClusterID) ([]spiderfy.Leg, error) {
	idx := c.Index()
	if idx == nil {
		return nil, ErrNoIndex
	}
	exp, err := c.Expand(id)
	if err != nil {
		return nil, err
	}
	if !exp.Terminal() {
		return nil, fmt.Errorf("cluster %s: %w", id, ErrNotTerminal)
	}
	legs, err := c.layout(idx, id, exp.Leaves)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.path != nil {
		c.path.Cancel()
	}
	c.transition(StateSpiderfied)
	c.legs = legs
	c.mu.Unlock()
	return legs, nil
}

// Unspiderfy closes the spider, if any.
func (c *Controller) Unspiderfy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSpiderfied {
		c.transition(StateIdle)
	}
}

func (c *Controller) layout(idx *cluster.Index, id cluster.ClusterID, leaves []cluster.Node) ([]spiderfy.Leg, error) {
	f, err := idx.Cluster(id)
	if err != nil {
		return nil, err
	}
	cfg := idx.Config()
	return spiderfy.Layout(leaves, f.Position, c.opts.Spiderfy.ForZoom(cfg.MaxZoom, cfg.Extent))
}
