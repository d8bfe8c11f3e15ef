// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package history

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/nodeglobe/internal/logging"
)

// Compactor periodically runs value log garbage collection so expired
// samples release disk space.
type Compactor struct {
	store    *BadgerStore
	interval time.Duration
	ratio    float64

	// Control
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
	lastRun time.Time
}

// NewCompactor creates a compactor. Zero values default to a 10 minute
// interval and a 0.5 discard ratio.
func NewCompactor(store *BadgerStore, interval time.Duration, ratio float64) *Compactor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &Compactor{store: store, interval: interval, ratio: ratio}
}

// Start begins the background compaction loop.
func (c *Compactor) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.running = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(ctx)

	logging.Info().Dur("interval", c.interval).Msg("History compactor started")
	return nil
}

// Stop stops the loop and waits for a running pass to finish.
func (c *Compactor) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
	logging.Info().Msg("History compactor stopped")
}

// IsRunning returns whether the compactor is active.
func (c *Compactor) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// LastRun returns when the last pass finished.
func (c *Compactor) LastRun() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun
}

func (c *Compactor) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.compact()
		}
	}
}

func (c *Compactor) compact() {
	start := time.Now()
	if err := c.store.RunGC(c.ratio); err != nil {
		logging.Error().Err(err).Msg("History GC failed")
	}

	c.mu.Lock()
	c.lastRun = time.Now()
	c.mu.Unlock()

	logging.Debug().Dur("duration", time.Since(start)).Msg("History compaction finished")
}
