// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package history

import (
	"bytes"
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/tomtom215/nodeglobe/internal/cluster"
)

func newTestStore(t *testing.T, retention, maxRange time.Duration) *BadgerStore {
	t.Helper()
	db, err := OpenDB("", true)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return NewBadgerStore(db, retention, maxRange)
}

func sample(at time.Time, latency float64) Sample {
	return Sample{Time: at, NodeID: "n1", Values: map[string]float64{"latency_ms": latency}}
}

func TestSampleKey_Ordering(t *testing.T) {
	t.Parallel()

	addr := netip.MustParseAddr("203.0.113.7")
	times := []time.Time{
		time.Unix(-100, 0),
		time.Unix(0, 0),
		time.Unix(0, 1),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 1, 0, time.UTC),
	}
	for i := 1; i < len(times); i++ {
		a, b := sampleKey(addr, times[i-1]), sampleKey(addr, times[i])
		if bytes.Compare(a, b) >= 0 {
			t.Errorf("key(%v) >= key(%v)", times[i-1], times[i])
		}
	}
	if got := len(sampleKey(addr, times[0])); got != keyLen {
		t.Errorf("key length = %d, want %d", got, keyLen)
	}
}

func TestNodePrefix_NoOverlap(t *testing.T) {
	t.Parallel()

	a := nodePrefix(netip.MustParseAddr("2001:db8::1"))
	b := sampleKey(netip.MustParseAddr("2001:db8::1:5"), time.Unix(1, 0))
	if bytes.HasPrefix(b, a) {
		t.Error("prefix of 2001:db8::1 matches a key of 2001:db8::1:5")
	}
}

func TestBadgerStore_AppendAndRange(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Hour, 0)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	// Appended out of order; Range returns them by time.
	err := store.Append(ctx, "198.51.100.4",
		sample(base.Add(2*time.Minute), 30),
		sample(base, 10),
		sample(base.Add(time.Minute), 20),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, "198.51.100.40", sample(base, 99)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.Range(ctx, "198.51.100.4", base, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Range() = %d samples, want 2", len(got))
	}
	if got[0].Values["latency_ms"] != 10 || got[1].Values["latency_ms"] != 20 {
		t.Errorf("Range() values = %v, %v; want 10, 20", got[0].Values, got[1].Values)
	}
	if !got[0].Time.Equal(base) {
		t.Errorf("Range()[0].Time = %v, want %v", got[0].Time, base)
	}

	all, err := store.Range(ctx, "198.51.100.4", base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Range() = %d samples, want 3", len(all))
	}

	none, err := store.Range(ctx, "192.0.2.1", base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("Range(unknown ip) = %v, want empty slice", none)
	}
}

func TestBadgerStore_MappedIPv4SharesKey(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, 0, 0)
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := store.Append(ctx, "::ffff:192.0.2.9", sample(at, 5)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	got, err := store.Latest(ctx, "192.0.2.9")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.Values["latency_ms"] != 5 {
		t.Errorf("Latest() = %+v", got)
	}
}

func TestBadgerStore_Errors(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Hour, 24*time.Hour)
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"append empty ip", func() error { return store.Append(ctx, "", sample(now, 1)) }, ErrInvalidIP},
		{"append bad ip", func() error { return store.Append(ctx, "node-1", sample(now, 1)) }, ErrInvalidIP},
		{"range bad ip", func() error {
			_, err := store.Range(ctx, "x", now, now)
			return err
		}, ErrInvalidIP},
		{"range inverted", func() error {
			_, err := store.Range(ctx, "192.0.2.1", now, now.Add(-time.Second))
			return err
		}, ErrInvalidRange},
		{"range too long", func() error {
			_, err := store.Range(ctx, "192.0.2.1", now.Add(-48*time.Hour), now)
			return err
		}, ErrInvalidRange},
		{"latest missing", func() error {
			_, err := store.Latest(ctx, "192.0.2.1")
			return err
		}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBadgerStore_Latest(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Hour, 0)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		if err := store.Append(ctx, "2001:db8::7", sample(base.Add(time.Duration(i)*time.Minute), float64(i))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	// A neighbouring address sorts after the node and must not be returned.
	if err := store.Append(ctx, "2001:db8::8", sample(base.Add(time.Hour), 100)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.Latest(ctx, "2001:db8::7")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.Values["latency_ms"] != 4 {
		t.Errorf("Latest() latency = %v, want 4", got.Values["latency_ms"])
	}
}

func TestBadgerStore_AppendNodes(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Hour, 0)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	nodes := []cluster.Node{
		{ID: "a", IP: "192.0.2.1", Position: orb.Point{1, 1}, Metadata: map[string]any{"latency_ms": 12.5, "region": "eu"}},
		{ID: "b", IP: "192.0.2.2", Position: orb.Point{2, 2}, Metadata: map[string]any{"region": "us"}},
		{ID: "c", IP: "", Position: orb.Point{3, 3}, Metadata: map[string]any{"latency_ms": 1.0}},
		{ID: "d", IP: "bogus", Position: orb.Point{4, 4}, Metadata: map[string]any{"latency_ms": 1.0}},
		{ID: "e", IP: "192.0.2.5", Position: orb.Point{5, 5}, Metadata: map[string]any{"capacity": 40}},
	}
	n, err := store.AppendNodes(ctx, nodes, at)
	if err != nil {
		t.Fatalf("AppendNodes() error = %v", err)
	}
	if n != 2 {
		t.Errorf("AppendNodes() = %d, want 2", n)
	}

	got, err := store.Latest(ctx, "192.0.2.5")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.NodeID != "e" || got.Values["capacity"] != 40 {
		t.Errorf("Latest() = %+v", got)
	}
	if _, err := store.Latest(ctx, "192.0.2.2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest(no numeric metadata) error = %v, want %v", err, ErrNotFound)
	}
}

func TestSampleFromNode(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	s, ok := SampleFromNode(cluster.Node{ID: "a", IP: "192.0.2.1", Metadata: map[string]any{"up": 1, "name": "x"}}, at)
	if !ok {
		t.Fatal("SampleFromNode() ok = false")
	}
	if s.Time.Location() != time.UTC || !s.Time.Equal(at) {
		t.Errorf("Time = %v, want %v in UTC", s.Time, at)
	}
	if len(s.Values) != 1 || s.Values["up"] != 1 {
		t.Errorf("Values = %v, want map[up:1]", s.Values)
	}
}

func TestBadgerStore_RunGCInMemory(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Hour, 0)
	if err := store.RunGC(0.5); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestCompactor_StartStop(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Hour, 0)
	c := NewCompactor(store, 10*time.Millisecond, 0)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !c.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.LastRun().IsZero() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.LastRun().IsZero() {
		t.Error("compactor never ran")
	}

	c.Stop()
	c.Stop()
	if c.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
