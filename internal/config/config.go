// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package config

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/controller"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/logging"
	"github.com/tomtom215/nodeglobe/internal/navigation"
	"github.com/tomtom215/nodeglobe/internal/spiderfy"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig       `koanf:"server"`
	Logging    LoggingConfig      `koanf:"logging"`
	Cluster    cluster.Config     `koanf:"cluster"`
	Camera     CameraConfig       `koanf:"camera"`
	Navigation navigation.Options `koanf:"navigation"`
	Spiderfy   spiderfy.Config    `koanf:"spiderfy"`
	Prefetch   PrefetchConfig     `koanf:"prefetch"`
	Source     SourceConfig       `koanf:"source"`
	GeoIP      GeoIPConfig        `koanf:"geoip"`
	History    HistoryConfig      `koanf:"history"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// CameraConfig holds the zoom scale and the view the server starts with.
type CameraConfig struct {
	MinZoom      int     `koanf:"min_zoom"`
	MaxZoom      int     `koanf:"max_zoom"`
	BaseAltitude float64 `koanf:"base_altitude"` // meters; altitude of zoom 0

	// PrefetchMarginRatio grows the visible bounds before prefetching.
	PrefetchMarginRatio float64 `koanf:"prefetch_margin_ratio"`

	Longitude float64 `koanf:"longitude"`
	Latitude  float64 `koanf:"latitude"`
	Altitude  float64 `koanf:"altitude"` // 0 = representative altitude of min_zoom
	Heading   float64 `koanf:"heading"`
	Aspect    float64 `koanf:"aspect"`
	FOV       float64 `koanf:"fov"`
}

// PrefetchConfig holds the adjacent-zoom prefetch cache settings.
type PrefetchConfig struct {
	Zooms     int           `koanf:"zooms"` // 0 disables prefetching
	CacheSize int           `koanf:"cache_size"`
	TTL       time.Duration `koanf:"ttl"`
}

// SourceConfig holds the provider node feed settings.
//
// Environment Variables:
//   - SOURCE_URL: JSON node list endpoint (empty disables polling)
//   - SOURCE_INTERVAL: Poll interval (default: 30s)
//   - SOURCE_RATE_LIMIT: Max requests per second (default: 1)
type SourceConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`

	Interval time.Duration `koanf:"interval"`

	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// Circuit breaker: open after BreakerFailures consecutive failures,
	// probe again after BreakerTimeout.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`

	// MaxNodes caps a single snapshot; larger feeds are truncated.
	MaxNodes int `koanf:"max_nodes"`
}

// GeoIPConfig points at a MaxMind City database.
type GeoIPConfig struct {
	Enabled      bool   `koanf:"enabled"`
	DatabasePath string `koanf:"database_path"`
}

// HistoryConfig holds per-node history storage settings.
type HistoryConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Path      string        `koanf:"path"`
	InMemory  bool          `koanf:"in_memory"`
	Retention time.Duration `koanf:"retention"`

	// MaxRange bounds a single history query.
	MaxRange time.Duration `koanf:"max_range"`
}

// Scale returns the zoom scale described by the camera section.
func (c CameraConfig) Scale() geometry.ZoomScale {
	return geometry.ZoomScale{
		MinZoom:      geometry.ZoomLevel(c.MinZoom),
		MaxZoom:      geometry.ZoomLevel(c.MaxZoom),
		BaseAltitude: c.BaseAltitude,
	}
}

// InitialCamera returns the camera the controller starts with.
func (c CameraConfig) InitialCamera() geometry.Camera {
	alt := c.Altitude
	if alt == 0 {
		s := c.Scale()
		alt = s.ZoomToAltitude(s.MinZoom)
	}
	return geometry.Camera{
		Center:   orb.Point{c.Longitude, c.Latitude},
		Altitude: alt,
		Heading:  c.Heading,
		Aspect:   c.Aspect,
		FOV:      c.FOV,
	}
}

// ControllerOptions assembles the controller options from the config.
func (c *Config) ControllerOptions() controller.Options {
	return controller.Options{
		Cluster:           c.Cluster,
		Scale:             c.Camera.Scale(),
		Navigation:        c.Navigation,
		Spiderfy:          c.Spiderfy,
		PrefetchMargin:    c.Camera.PrefetchMarginRatio,
		PrefetchZooms:     c.Prefetch.Zooms,
		PrefetchCacheSize: c.Prefetch.CacheSize,
		PrefetchTTL:       c.Prefetch.TTL,
		InitialCamera:     c.Camera.InitialCamera(),
	}
}

// LoggingOptions converts the logging section for logging.Init.
func (c *Config) LoggingOptions() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
