// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/navigation"
	"github.com/tomtom215/nodeglobe/internal/spiderfy"
)

// DefaultConfigPaths lists the config file locations searched in order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/nodeglobe/config.yaml",
	"/etc/nodeglobe/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
// File and environment layers override these.
func defaultConfig() *Config {
	scale := geometry.DefaultZoomScale()
	clusterCfg := cluster.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:              8742,
			Host:              "0.0.0.0",
			Timeout:           30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			Environment:       "development",
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Cluster: clusterCfg,
		Camera: CameraConfig{
			MinZoom:             int(scale.MinZoom),
			MaxZoom:             clusterCfg.MaxZoom + 1, // one band past the last clustered zoom shows raw nodes
			BaseAltitude:        scale.BaseAltitude,
			PrefetchMarginRatio: 0.5,
			Longitude:           0,
			Latitude:            20,
			Altitude:            0,
			Aspect:              16.0 / 9.0,
			FOV:                 60,
		},
		Navigation: navigation.DefaultOptions(),
		Spiderfy:   spiderfy.DefaultConfig(),
		Prefetch: PrefetchConfig{
			Zooms:     1,
			CacheSize: 64,
			TTL:       2 * time.Minute,
		},
		Source: SourceConfig{
			URL:             "", // polling disabled until a feed is configured
			Timeout:         15 * time.Second,
			Interval:        30 * time.Second,
			RateLimit:       1,
			RateBurst:       1,
			BreakerFailures: 5,
			BreakerTimeout:  time.Minute,
			MaxNodes:        250000,
		},
		GeoIP: GeoIPConfig{
			Enabled:      false,
			DatabasePath: "/data/GeoLite2-City.mmdb",
		},
		History: HistoryConfig{
			Enabled:   true,
			Path:      "/data/history",
			InMemory:  false,
			Retention: 7 * 24 * time.Hour,
			MaxRange:  7 * 24 * time.Hour,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// load runs the three layers with an explicit config file path ("" skips
// the file layer).
func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// CLUSTER_MAX_ZOOM -> cluster.max_zoom
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Cluster mappings
	"cluster_min_zoom":     "cluster.min_zoom",
	"cluster_max_zoom":     "cluster.max_zoom",
	"cluster_min_points":   "cluster.min_points",
	"cluster_radius":       "cluster.radius",
	"cluster_extent":       "cluster.extent",
	"cluster_radius_decay": "cluster.radius_decay",
	"cluster_centroid":     "cluster.centroid",
	"cluster_node_size":    "cluster.node_size",

	// Camera mappings
	"camera_min_zoom":       "camera.min_zoom",
	"camera_max_zoom":       "camera.max_zoom",
	"camera_base_altitude":  "camera.base_altitude",
	"prefetch_margin_ratio": "camera.prefetch_margin_ratio",
	"camera_longitude":      "camera.longitude",
	"camera_latitude":       "camera.latitude",
	"camera_altitude":       "camera.altitude",
	"camera_aspect":         "camera.aspect",
	"camera_fov":            "camera.fov",

	// Navigation and spiderfy mappings
	"navigation_steps_per_zoom": "navigation.steps_per_zoom",
	"navigation_min_steps":      "navigation.min_steps",
	"navigation_max_steps":      "navigation.max_steps",
	"spiderfy_leg_length":       "spiderfy.leg_length",
	"spiderfy_ring_spacing":     "spiderfy.ring_spacing",
	"spiderfy_min_separation":   "spiderfy.min_separation",

	// Prefetch mappings
	"prefetch_zooms":      "prefetch.zooms",
	"prefetch_cache_size": "prefetch.cache_size",
	"prefetch_ttl":        "prefetch.ttl",

	// Source mappings
	"source_url":              "source.url",
	"source_timeout":          "source.timeout",
	"source_interval":         "source.interval",
	"source_rate_limit":       "source.rate_limit",
	"source_rate_burst":       "source.rate_burst",
	"source_breaker_failures": "source.breaker_failures",
	"source_breaker_timeout":  "source.breaker_timeout",
	"source_max_nodes":        "source.max_nodes",

	// GeoIP mappings
	"geoip_enabled":  "geoip.enabled",
	"geoip_database": "geoip.database_path",

	// History mappings
	"history_enabled":   "history.enabled",
	"history_path":      "history.path",
	"history_in_memory": "history.in_memory",
	"history_retention": "history.retention",
	"history_max_range": "history.max_range",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped keys return "" and are skipped so unrelated variables never
// reach the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
