// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package services

import (
	"context"
	"fmt"
)

// StartStopper matches *history.Compactor.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop()
}

// StartStopManager matches *source.Poller, whose Stop reports misuse.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// CompactorService runs the history compactor under supervision.
type CompactorService struct {
	compactor StartStopper
	name      string
}

// NewCompactorService creates a compactor service wrapper.
func NewCompactorService(compactor StartStopper) *CompactorService {
	return &CompactorService{compactor: compactor, name: "history-compactor"}
}

// Serve implements suture.Service. Stop blocks until the compaction
// goroutine exits.
func (s *CompactorService) Serve(ctx context.Context) error {
	if err := s.compactor.Start(ctx); err != nil {
		return fmt.Errorf("history compactor start failed: %w", err)
	}
	<-ctx.Done()
	s.compactor.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for suture's log messages.
func (s *CompactorService) String() string {
	return s.name
}

// PollerService runs the node source poller under supervision.
type PollerService struct {
	poller StartStopManager
	name   string
}

// NewPollerService creates a poller service wrapper.
func NewPollerService(poller StartStopManager) *PollerService {
	return &PollerService{poller: poller, name: "node-poller"}
}

// Serve implements suture.Service.
//
// Start replays the stored snapshot synchronously, so a restart after a
// crash rebuilds nothing when the stored version is already loaded.
func (s *PollerService) Serve(ctx context.Context) error {
	if err := s.poller.Start(ctx); err != nil {
		return fmt.Errorf("node poller start failed: %w", err)
	}
	<-ctx.Done()
	if err := s.poller.Stop(); err != nil {
		return fmt.Errorf("node poller stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's log messages.
func (s *PollerService) String() string {
	return s.name
}
