// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Unknown levels fall back to info.
	Level string

	// Format is json or console.
	Format string

	Caller    bool
	Timestamp bool

	// Service and Version are attached to every line when set.
	Service string
	Version string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Service:   "nodeglobe",
		Output:    os.Stderr,
	}
}

// current holds the global logger. Readers never block a concurrent Init.
var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // logging must work before Init is called
func init() {
	Init(DefaultConfig())
}

// Init replaces the global logger. Safe to call more than once.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = false

	l := build(cfg)
	current.Store(&l)
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}

	c := zerolog.New(out).With()
	if cfg.Timestamp {
		c = c.Timestamp()
	}
	if cfg.Caller {
		c = c.Caller()
	}
	if cfg.Service != "" {
		c = c.Str("service", cfg.Service)
	}
	if cfg.Version != "" {
		c = c.Str("version", cfg.Version)
	}
	return c.Logger()
}

// parseLevel accepts zerolog's level names plus "warning". Anything it does
// not recognise, including "", maps to info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// ValidLevel reports whether level is accepted as LOG_LEVEL.
func ValidLevel(level string) bool {
	level = strings.ToLower(level)
	if level == "" || level == "warning" {
		return true
	}
	lvl, err := zerolog.ParseLevel(level)
	return err == nil && lvl != zerolog.NoLevel
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// SetLogger replaces the global logger, typically with a NewTestLogger.
//
//nolint:gocritic // zerolog.Logger is passed by value
func SetLogger(l zerolog.Logger) {
	current.Store(&l)
}

// With creates a child logger context from the global logger.
func With() zerolog.Context {
	return current.Load().With()
}

// Debug starts a debug event on the global logger.
func Debug() *zerolog.Event { return current.Load().Debug() }

// Info starts an info event on the global logger.
//
//	logging.Info().Int("nodes", n).Msg("Index rebuilt")
func Info() *zerolog.Event { return current.Load().Info() }

// Warn starts a warn event on the global logger.
func Warn() *zerolog.Event { return current.Load().Warn() }

// Error starts an error event on the global logger.
func Error() *zerolog.Event { return current.Load().Error() }

// Fatal starts a fatal event. os.Exit(1) runs after the message is written.
func Fatal() *zerolog.Event { return current.Load().Fatal() }

// Err starts an error event carrying err, or an info event when err is nil.
func Err(err error) *zerolog.Event { return current.Load().Err(err) }

// NewTestLogger creates a logger that writes to w.
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
func NewTestLogger(w io.Writer) zerolog.Logger {
	return build(Config{Output: w, Timestamp: true})
}
