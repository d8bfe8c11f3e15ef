// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/nodeglobe/internal/api"
	"github.com/tomtom215/nodeglobe/internal/config"
	"github.com/tomtom215/nodeglobe/internal/controller"
	"github.com/tomtom215/nodeglobe/internal/history"
	"github.com/tomtom215/nodeglobe/internal/logging"
	"github.com/tomtom215/nodeglobe/internal/middleware"
	"github.com/tomtom215/nodeglobe/internal/source"
	"github.com/tomtom215/nodeglobe/internal/supervisor"
	"github.com/tomtom215/nodeglobe/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logOpts := cfg.LoggingOptions()
	logOpts.Version = version
	logging.Init(logOpts)
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Bool("source_enabled", cfg.Source.URL != "").
		Bool("history_enabled", cfg.History.Enabled).
		Bool("geoip_enabled", cfg.GeoIP.Enabled).
		Msg("Starting NodeGlobe with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the components and blocks until the supervisor tree stops.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	ctrl, err := controller.New(cfg.ControllerOptions())
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}
	defer ctrl.Close()

	// Data layer
	var (
		db        *badger.DB
		store     history.Store
		snapshots *source.SnapshotStore
		recorder  source.HistoryRecorder
	)
	if cfg.History.Enabled {
		db, err = history.OpenDB(cfg.History.Path, cfg.History.InMemory)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing history database")
			}
		}()

		badgerStore := history.NewBadgerStore(db, cfg.History.Retention, cfg.History.MaxRange)
		store = badgerStore
		recorder = badgerStore
		tree.AddDataService(services.NewCompactorService(history.NewCompactor(badgerStore, 0, 0)))

		snapshots, err = source.NewSnapshotStore(db)
		if err != nil {
			return fmt.Errorf("create snapshot store: %w", err)
		}
		defer snapshots.Close()

		logging.Info().
			Str("path", cfg.History.Path).
			Bool("in_memory", cfg.History.InMemory).
			Dur("retention", cfg.History.Retention).
			Msg("History storage initialized")
	} else {
		logging.Info().Msg("History disabled (HISTORY_ENABLED=false)")
	}

	// Ingest layer
	var resolver source.Resolver
	if cfg.GeoIP.Enabled {
		geoip, err := source.OpenGeoIP(cfg.GeoIP.DatabasePath)
		if err != nil {
			logging.Warn().Err(err).Msg("GeoIP unavailable, nodes without coordinates will be dropped")
		} else {
			resolver = geoip
			defer func() {
				if err := geoip.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing GeoIP database")
				}
			}()
		}
	}

	var poller *source.Poller
	if cfg.Source.URL != "" {
		poller, err = source.NewPoller(source.PollerOptions{
			Source:    source.NewHTTPSource(cfg.Source),
			Sink:      ctrl,
			Resolver:  resolver,
			Snapshots: snapshots,
			History:   recorder,
			Interval:  cfg.Source.Interval,
			MaxNodes:  cfg.Source.MaxNodes,
		})
		if err != nil {
			return fmt.Errorf("create poller: %w", err)
		}
		tree.AddIngestService(services.NewPollerService(poller))
		logging.Info().
			Str("url", cfg.Source.URL).
			Dur("interval", cfg.Source.Interval).
			Msg("Node poller added to supervisor tree")
	} else {
		logging.Warn().Msg("SOURCE_URL not set, the index stays empty until a feed is configured")
	}

	// API layer
	server, err := newHTTPServer(cfg, ctrl, store, poller)
	if err != nil {
		return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = fmt.Errorf("supervisor tree: %w", err)
		}
		cancel()
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return runErr
}

// newHTTPServer builds the API handler and router. poller may be nil.
func newHTTPServer(cfg *config.Config, ctrl *controller.Controller, store history.Store, poller *source.Poller) (*http.Server, error) {
	opts := api.HandlerOptions{
		Controller:  ctrl,
		History:     store,
		Performance: middleware.NewPerformanceMonitor(0, middleware.DefaultSlowRequestThreshold),
		Version:     version,
	}
	if poller != nil {
		opts.Poller = poller
	}

	handler, err := api.NewHandler(opts)
	if err != nil {
		return nil, fmt.Errorf("create API handler: %w", err)
	}

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Server.RateLimitDisabled

	router, err := api.NewRouter(handler, mwConfig).SetupChi()
	if err != nil {
		return nil, fmt.Errorf("setup router: %w", err)
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}, nil
}

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"
