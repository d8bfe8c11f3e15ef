// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*PollerService)(nil)
	_ suture.Service = (*CompactorService)(nil)
)

// mockHTTPServer blocks in ListenAndServe until Shutdown unless listenErr is set.
type mockHTTPServer struct {
	listenErr   error
	shutdownErr error
	listens     atomic.Int32
	shutdowns   atomic.Int32
	stopCh      chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.listens.Add(1)
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

// mockComponent implements both StartStopper shapes through adapters below.
type mockComponent struct {
	startErr error
	started  atomic.Int32
	stopped  atomic.Int32
}

func (m *mockComponent) Start(context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.started.Add(1)
	return nil
}

func (m *mockComponent) Stop() { m.stopped.Add(1) }

type mockManager struct {
	mockComponent
	stopErr error
}

func (m *mockManager) Stop() error {
	m.stopped.Add(1)
	return m.stopErr
}

func serveBriefly(t *testing.T, svc suture.Service) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
		return nil
	}
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		if got := NewHTTPServerService(newMockHTTPServer(), d).shutdownTimeout; got != 10*time.Second {
			t.Errorf("shutdownTimeout(%v) = %v, want 10s", d, got)
		}
	}
	if got := NewHTTPServerService(newMockHTTPServer(), time.Second).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown", func(t *testing.T) {
		t.Parallel()
		server := newMockHTTPServer()
		err := serveBriefly(t, NewHTTPServerService(server, time.Second))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
		if server.shutdowns.Load() != 1 {
			t.Errorf("Shutdown calls = %d, want 1", server.shutdowns.Load())
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		t.Parallel()
		server := newMockHTTPServer()
		server.listenErr = errors.New("address already in use")
		err := NewHTTPServerService(server, time.Second).Serve(context.Background())
		if err == nil || !errors.Is(err, server.listenErr) {
			t.Errorf("Serve() error = %v, want wrapped listen error", err)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		t.Parallel()
		server := newMockHTTPServer()
		server.shutdownErr = context.DeadlineExceeded
		err := serveBriefly(t, NewHTTPServerService(server, time.Second))
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() error = %v, want shutdown error", err)
		}
	})
}

func TestCompactorService(t *testing.T) {
	t.Parallel()

	comp := &mockComponent{}
	svc := NewCompactorService(comp)
	if svc.String() != "history-compactor" {
		t.Errorf("String() = %q", svc.String())
	}
	if err := serveBriefly(t, svc); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v", err)
	}
	if comp.started.Load() != 1 || comp.stopped.Load() != 1 {
		t.Errorf("started = %d, stopped = %d; want 1, 1", comp.started.Load(), comp.stopped.Load())
	}

	failing := &mockComponent{startErr: errors.New("db closed")}
	if err := NewCompactorService(failing).Serve(context.Background()); !errors.Is(err, failing.startErr) {
		t.Errorf("Serve() error = %v, want start error", err)
	}
}

func TestPollerService(t *testing.T) {
	t.Parallel()

	mgr := &mockManager{}
	svc := NewPollerService(mgr)
	if svc.String() != "node-poller" {
		t.Errorf("String() = %q", svc.String())
	}
	if err := serveBriefly(t, svc); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v", err)
	}
	if mgr.started.Load() != 1 || mgr.stopped.Load() != 1 {
		t.Errorf("started = %d, stopped = %d; want 1, 1", mgr.started.Load(), mgr.stopped.Load())
	}

	stopFails := &mockManager{stopErr: errors.New("not running")}
	if err := serveBriefly(t, NewPollerService(stopFails)); !errors.Is(err, stopFails.stopErr) {
		t.Errorf("Serve() error = %v, want stop error", err)
	}

	startFails := &mockManager{mockComponent: mockComponent{startErr: errors.New("already running")}}
	if err := NewPollerService(startFails).Serve(context.Background()); !errors.Is(err, startFails.startErr) {
		t.Errorf("Serve() error = %v, want start error", err)
	}
}
