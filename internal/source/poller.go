// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/controller"
	"github.com/tomtom215/nodeglobe/internal/logging"
	"github.com/tomtom215/nodeglobe/internal/metrics"
)

// NodeSink receives node sets. *controller.Controller implements it.
type NodeSink interface {
	SetNodes(ctx context.Context, nodes []cluster.Node, version uint64) (controller.BuildResult, error)
}

// HistoryRecorder stores per-poll samples. *history.BadgerStore implements it.
type HistoryRecorder interface {
	AppendNodes(ctx context.Context, nodes []cluster.Node, at time.Time) (int, error)
}

// PollerOptions configures a Poller. Only Source and Sink are required.
type PollerOptions struct {
	Source    Source
	Sink      NodeSink
	Resolver  Resolver
	Snapshots *SnapshotStore
	History   HistoryRecorder

	Interval time.Duration
	MaxNodes int
}

// PollResult describes one poll.
type PollResult struct {
	Version uint64
	Nodes   int
	Changed bool
	Samples int
}

// Status is the poller's view of the feed.
type Status struct {
	Running   bool      `json:"running"`
	Version   uint64    `json:"version"`
	Nodes     int       `json:"nodes"`
	LastPoll  time.Time `json:"last_poll,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	WarmBoot  bool      `json:"warm_boot"`
}

// Poller fetches the node set on an interval and pushes changes into the
// sink. Fetch errors keep the previous node set in place.
type Poller struct {
	opts PollerOptions
	log  zerolog.Logger

	// pollMu serialises polls.
	pollMu sync.Mutex

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	version  uint64
	nodes    int
	lastPoll time.Time
	lastErr  error
	warmBoot bool
}

// NewPoller creates a poller. A zero interval defaults to 30 seconds.
func NewPoller(opts PollerOptions) (*Poller, error) {
	if opts.Source == nil {
		return nil, errors.New("poller: source is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("poller: sink is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	return &Poller{opts: opts, log: logging.WithComponent("poller")}, nil
}

// Start replays the stored snapshot, if any, and begins polling. The first
// poll runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller is already running")
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	p.mu.Unlock()

	p.restore(ctx)

	p.wg.Add(1)
	go p.run(ctx)

	p.log.Info().Dur("interval", p.opts.Interval).Msg("Node poller started")
	return nil
}

// Stop stops polling and waits for an in-flight poll.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller is not running")
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info().Msg("Node poller stopped")
	return nil
}

// Status returns a copy of the poller's state.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Status{
		Running:  p.running,
		Version:  p.version,
		Nodes:    p.nodes,
		LastPoll: p.lastPoll,
		WarmBoot: p.warmBoot,
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		if _, err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			p.log.Warn().Err(err).Msg("Node poll failed, keeping previous node set")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// restore pushes the stored snapshot into the sink so the index is served
// before the first fetch completes.
func (p *Poller) restore(ctx context.Context) {
	if p.opts.Snapshots == nil {
		return
	}
	snap, err := p.opts.Snapshots.Load()
	if errors.Is(err, ErrNoSnapshot) {
		return
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to load stored snapshot, starting cold")
		return
	}

	res, err := p.opts.Sink.SetNodes(ctx, snap.Nodes, snap.Version)
	if err != nil {
		p.log.Warn().Err(err).Msg("Stored snapshot did not build cleanly")
	}

	p.mu.Lock()
	p.version = snap.Version
	p.nodes = len(snap.Nodes)
	p.warmBoot = true
	p.mu.Unlock()

	p.log.Info().
		Int("nodes", res.Nodes).
		Uint64("version", snap.Version).
		Time("fetched_at", snap.FetchedAt).
		Msg("Restored stored node snapshot")
}

// Poll runs one fetch, normalise, push cycle.
func (p *Poller) Poll(ctx context.Context) (PollResult, error) {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	start := time.Now()
	records, err := p.opts.Source.Fetch(ctx)
	if err != nil {
		metrics.RecordSourcePoll(time.Since(start), "error")
		p.setResult(start, 0, 0, err)
		return PollResult{}, fmt.Errorf("fetch nodes: %w", err)
	}

	nodes := Normalize(records, p.opts.Resolver, p.opts.MaxNodes)
	version := Fingerprint(nodes)
	res := PollResult{Version: version, Nodes: len(nodes)}

	p.mu.RLock()
	changed := version != p.version
	p.mu.RUnlock()

	if changed {
		if _, err := p.opts.Sink.SetNodes(ctx, nodes, version); err != nil {
			// The controller serves the raw nodes; the set still counts as seen.
			p.log.Warn().Err(err).Msg("Index build failed for fetched nodes")
		}
		res.Changed = true
		p.saveSnapshot(version, start, nodes)
	}

	if p.opts.History != nil {
		n, err := p.opts.History.AppendNodes(ctx, nodes, start)
		if err != nil {
			p.log.Error().Err(err).Msg("Failed to record node history")
		}
		res.Samples = n
	}

	result := "unchanged"
	if res.Changed {
		result = "changed"
	}
	metrics.RecordSourcePoll(time.Since(start), result)
	p.setResult(start, version, len(nodes), nil)

	p.log.Debug().
		Int("records", len(records)).
		Int("nodes", len(nodes)).
		Bool("changed", res.Changed).
		Int("samples", res.Samples).
		Dur("duration", time.Since(start)).
		Msg("Node poll finished")
	return res, nil
}

func (p *Poller) saveSnapshot(version uint64, at time.Time, nodes []cluster.Node) {
	if p.opts.Snapshots == nil {
		return
	}
	err := p.opts.Snapshots.Save(Snapshot{Version: version, FetchedAt: at.UTC(), Nodes: nodes})
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to store node snapshot")
	}
}

func (p *Poller) setResult(at time.Time, version uint64, nodes int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastPoll = at
	p.lastErr = err
	if err == nil {
		p.version = version
		p.nodes = nodes
	}
}
