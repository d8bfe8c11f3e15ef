// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package middleware

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// DefaultCompressionMinSize is the smallest response body that is gzipped.
const DefaultCompressionMinSize = 1024

// Compression returns gzip middleware for responses of at least minSize
// bytes. Clients that do not send Accept-Encoding: gzip get plain responses.
func Compression(minSize int) (func(http.Handler) http.Handler, error) {
	if minSize <= 0 {
		minSize = DefaultCompressionMinSize
	}
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(minSize),
		gzhttp.ContentTypes([]string{"application/json", "application/geo+json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("gzip wrapper: %w", err)
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}, nil
}
