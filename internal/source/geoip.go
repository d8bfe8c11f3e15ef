// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package source

import (
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/logging"
)

// GeoIPResolver places nodes from a MaxMind GeoLite2/GeoIP2 City database.
// It is safe for concurrent use.
type GeoIPResolver struct {
	reader *maxminddb.Reader
}

// cityRecord is the subset of a City record the resolver reads.
type cityRecord struct {
	Location struct {
		Latitude       *float64 `maxminddb:"latitude"`
		Longitude      *float64 `maxminddb:"longitude"`
		AccuracyRadius uint16   `maxminddb:"accuracy_radius"`
	} `maxminddb:"location"`
}

// OpenGeoIP opens the database at path.
func OpenGeoIP(path string) (*GeoIPResolver, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open GeoIP database: %w", err)
	}

	logging.Info().
		Str("path", path).
		Str("type", reader.Metadata.DatabaseType).
		Uint("build_epoch", reader.Metadata.BuildEpoch).
		Msg("GeoIP database loaded")
	return &GeoIPResolver{reader: reader}, nil
}

// Resolve implements Resolver. Addresses that are not in the database, or
// whose record carries no location, report false.
func (g *GeoIPResolver) Resolve(ip string) (orb.Point, bool) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return orb.Point{}, false
	}

	var rec cityRecord
	if err := g.reader.Lookup(addr, &rec); err != nil {
		logging.Debug().Err(err).Str("ip", ip).Msg("GeoIP lookup failed")
		return orb.Point{}, false
	}
	if rec.Location.Latitude == nil || rec.Location.Longitude == nil {
		return orb.Point{}, false
	}
	return orb.Point{*rec.Location.Longitude, *rec.Location.Latitude}, true
}

// Close releases the database.
func (g *GeoIPResolver) Close() error {
	return g.reader.Close()
}

var _ Resolver = (*GeoIPResolver)(nil)
