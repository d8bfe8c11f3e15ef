// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	for k, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		if got, ok := c.Get(k); !ok || got != want {
			t.Errorf("Get(%q) = %d, %v; want %d", k, got, ok, want)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Touch 'a' so 'b' becomes least recently used.
	c.Get("a")
	c.Add("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %q to be present", k)
		}
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	c := NewLRU[int, string](10, time.Second)
	c.now = func() time.Time { return now }

	c.Add(1, "x")
	if _, ok := c.Get(1); !ok {
		t.Fatal("expected key 1 before expiry")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get(1); ok {
		t.Error("expected key 1 to expire")
	}
	if c.Len() != 0 {
		t.Errorf("Len() after expiry = %d, want 0", c.Len())
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](2, time.Minute)
	c.Add("a", 1)
	c.Add("a", 2)
	if got, _ := c.Get("a"); got != 2 {
		t.Errorf("Get(a) = %d, want 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_RemoveAndClear(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, int](10, time.Minute)
	for i := 0; i < 6; i++ {
		c.Add(i, i)
	}
	if !c.Remove(0) || c.Remove(0) {
		t.Error("Remove(0) should succeed once")
	}
	if n := c.RemoveFunc(func(k int) bool { return k%2 == 0 }); n != 2 {
		t.Errorf("RemoveFunc(even) = %d, want 2", n)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestLRU_Stats(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](5, time.Minute)
	c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 1, 1", hits, misses, size)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](100, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := fmt.Sprintf("k%d", (g*i)%150)
				c.Add(k, i)
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}

func TestLRU_Defaults(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, int](0, 0)
	if c.capacity != 256 || c.ttl != 5*time.Minute {
		t.Errorf("defaults = %d, %v; want 256, 5m", c.capacity, c.ttl)
	}
}

func BenchmarkLRU_Add(b *testing.B) {
	c := NewLRU[int, int](10000, time.Minute)
	i := 0
	for b.Loop() {
		c.Add(i%20000, i)
		i++
	}
}

func BenchmarkLRU_Get(b *testing.B) {
	c := NewLRU[int, int](10000, time.Minute)
	for i := 0; i < 10000; i++ {
		c.Add(i, i)
	}
	i := 0
	for b.Loop() {
		c.Get(i % 10000)
		i++
	}
}
