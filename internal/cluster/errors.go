// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package cluster

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every *ConfigError.
	ErrInvalidConfig = errors.New("invalid cluster config")

	// ErrClusterNotFound is returned for ids that do not resolve in this
	// index, including ids issued by an earlier build.
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrInvalidNode is returned when a node position is not finite or its
	// latitude lies outside [-90, 90].
	ErrInvalidNode = errors.New("invalid node")
)

// ConfigError names the offending Config field.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid cluster config: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
