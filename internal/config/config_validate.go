// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/logging"
)

// Validate checks that every section holds usable values.
// Cluster parameters are rejected, never clamped.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.Cluster.Validate(); err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.Navigation.Validate(); err != nil {
		return err
	}
	if err := c.Spiderfy.Validate(); err != nil {
		return err
	}
	if err := c.validatePrefetch(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateGeoIP(); err != nil {
		return err
	}
	return c.validateHistory()
}

// validEnvironments defines the allowed server environments
var validEnvironments = []string{"development", "staging", "production"}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	if !slices.Contains(validEnvironments, c.Server.Environment) {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production; " +
			"set specific origins, e.g. CORS_ORIGINS=https://globe.example.com")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	return slices.Contains(c.Server.CORSOrigins, "*")
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitReqs < minRateLimitRequests || c.Server.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateCamera checks the zoom scale against the cluster range and the
// initial view.
func (c *Config) validateCamera() error {
	scale := c.Camera.Scale()
	if err := scale.Validate(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if c.Camera.MaxZoom <= c.Cluster.MaxZoom {
		return fmt.Errorf("CAMERA_MAX_ZOOM (%d) must exceed CLUSTER_MAX_ZOOM (%d) so raw nodes are reachable",
			c.Camera.MaxZoom, c.Cluster.MaxZoom)
	}
	if c.Camera.MinZoom != c.Cluster.MinZoom {
		return fmt.Errorf("CAMERA_MIN_ZOOM (%d) must equal CLUSTER_MIN_ZOOM (%d)", c.Camera.MinZoom, c.Cluster.MinZoom)
	}
	if _, err := geometry.ExpandBounds(geometry.WorldBound, c.Camera.PrefetchMarginRatio); err != nil {
		return fmt.Errorf("PREFETCH_MARGIN_RATIO: %w", err)
	}
	if err := c.Camera.InitialCamera().Validate(); err != nil {
		return fmt.Errorf("camera: initial view: %w", err)
	}
	return nil
}

func (c *Config) validatePrefetch() error {
	if c.Prefetch.Zooms < 0 || c.Prefetch.Zooms > 4 {
		return fmt.Errorf("PREFETCH_ZOOMS must be between 0 and 4")
	}
	if c.Prefetch.Zooms == 0 {
		return nil
	}
	if c.Prefetch.CacheSize < 1 {
		return fmt.Errorf("PREFETCH_CACHE_SIZE must be at least 1")
	}
	if c.Prefetch.TTL <= 0 {
		return fmt.Errorf("PREFETCH_TTL must be positive")
	}
	return nil
}

// validateSource validates the node feed (only if a URL is configured)
func (c *Config) validateSource() error {
	if c.Source.URL == "" {
		return nil
	}
	if err := validateFeedURL(c.Source.URL, "SOURCE_URL"); err != nil {
		return err
	}
	if c.Source.Interval < time.Second {
		return fmt.Errorf("SOURCE_INTERVAL must be at least 1s")
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("SOURCE_TIMEOUT must be positive")
	}
	if c.Source.RateLimit <= 0 || c.Source.RateBurst < 1 {
		return fmt.Errorf("SOURCE_RATE_LIMIT must be positive and SOURCE_RATE_BURST at least 1")
	}
	if c.Source.BreakerFailures < 1 {
		return fmt.Errorf("SOURCE_BREAKER_FAILURES must be at least 1")
	}
	if c.Source.MaxNodes < 1 {
		return fmt.Errorf("SOURCE_MAX_NODES must be at least 1")
	}
	return nil
}

func (c *Config) validateGeoIP() error {
	if c.GeoIP.Enabled && c.GeoIP.DatabasePath == "" {
		return fmt.Errorf("GEOIP_DATABASE is required when GEOIP_ENABLED=true")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if !c.History.Enabled {
		return nil
	}
	if !c.History.InMemory && c.History.Path == "" {
		return fmt.Errorf("HISTORY_PATH is required unless HISTORY_IN_MEMORY=true")
	}
	if c.History.Retention < time.Minute {
		return fmt.Errorf("HISTORY_RETENTION must be at least 1m")
	}
	if c.History.MaxRange <= 0 {
		return fmt.Errorf("HISTORY_MAX_RANGE must be positive")
	}
	return nil
}
