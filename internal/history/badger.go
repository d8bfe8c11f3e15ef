// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package history

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/logging"
	"github.com/tomtom215/nodeglobe/internal/metrics"
)

// Key layout: "history:" | 16-byte address | ":" | 8-byte time.
// The address is fixed width so one node's prefix never matches another's.
const keyPrefix = "history:"

const (
	addrLen = 16
	keyLen  = len(keyPrefix) + addrLen + 1 + 8
)

// OpenDB opens the BadgerDB shared by the history and snapshot stores.
// An in-memory database ignores path.
func OpenDB(path string, inMemory bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", path).
		Bool("in_memory", inMemory).
		Msg("History database opened")
	return db, nil
}

// BadgerStore implements Store on BadgerDB. Every sample carries a TTL of
// the configured retention.
type BadgerStore struct {
	db        *badger.DB
	retention time.Duration
	maxRange  time.Duration
}

// NewBadgerStore creates a store on db. A zero maxRange allows any range.
func NewBadgerStore(db *badger.DB, retention, maxRange time.Duration) *BadgerStore {
	return &BadgerStore{db: db, retention: retention, maxRange: maxRange}
}

// sampleKey encodes ip and t. The sign bit of the nanosecond count is
// flipped so that byte order equals time order.
func sampleKey(addr netip.Addr, t time.Time) []byte {
	key := make([]byte, 0, keyLen)
	key = append(key, keyPrefix...)
	a := addr.As16()
	key = append(key, a[:]...)
	key = append(key, ':')
	return binary.BigEndian.AppendUint64(key, uint64(t.UnixNano())^(1<<63))
}

func nodePrefix(addr netip.Addr) []byte {
	key := make([]byte, 0, keyLen)
	key = append(key, keyPrefix...)
	a := addr.As16()
	key = append(key, a[:]...)
	return append(key, ':')
}

func (s *BadgerStore) entry(addr netip.Addr, sample Sample) (*badger.Entry, error) {
	data, err := json.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("marshal sample: %w", err)
	}
	e := badger.NewEntry(sampleKey(addr, sample.Time), data)
	if s.retention > 0 {
		e = e.WithTTL(s.retention)
	}
	return e, nil
}

// Append stores samples for ip in one transaction.
func (s *BadgerStore) Append(ctx context.Context, ip string, samples ...Sample) error {
	addr, err := parseIP(ip)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, sample := range samples {
			e, err := s.entry(addr, sample)
			if err != nil {
				return err
			}
			if err := txn.SetEntry(e); err != nil {
				return fmt.Errorf("set sample: %w", err)
			}
		}
		return nil
	})
	metrics.RecordHistoryWrite(len(samples), err)
	return err
}

// AppendNodes records one sample per node at time at using a write batch.
// Nodes without an IP or numeric metadata are skipped. It returns the
// number of samples written.
func (s *BadgerStore) AppendNodes(ctx context.Context, nodes []cluster.Node, at time.Time) (int, error) {
	wb := s.db.NewWriteBatch()

	written := 0
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			wb.Cancel()
			return 0, err
		}
		sample, ok := SampleFromNode(n, at)
		if !ok {
			continue
		}
		addr, err := parseIP(n.IP)
		if err != nil {
			continue
		}
		e, err := s.entry(addr, sample)
		if err == nil {
			err = wb.SetEntry(e)
		}
		if err != nil {
			wb.Cancel()
			metrics.RecordHistoryWrite(0, err)
			return 0, fmt.Errorf("batch sample: %w", err)
		}
		written++
	}

	err := wb.Flush()
	metrics.RecordHistoryWrite(written, err)
	if err != nil {
		return 0, fmt.Errorf("flush samples: %w", err)
	}
	return written, nil
}

// Range returns the samples for ip between from and to inclusive.
func (s *BadgerStore) Range(ctx context.Context, ip string, from, to time.Time) ([]Sample, error) {
	addr, err := parseIP(ip)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to %s is before from %s", ErrInvalidRange, to, from)
	}
	if s.maxRange > 0 && to.Sub(from) > s.maxRange {
		return nil, fmt.Errorf("%w: %s exceeds the maximum of %s", ErrInvalidRange, to.Sub(from), s.maxRange)
	}

	samples := make([]Sample, 0)
	prefix := nodePrefix(addr)
	end := sampleKey(addr, to)

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(sampleKey(addr, from)); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			if string(item.Key()) > string(end) {
				break
			}
			var sample Sample
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &sample)
			}); err != nil {
				return fmt.Errorf("unmarshal sample: %w", err)
			}
			samples = append(samples, sample)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// Latest returns the newest sample for ip.
func (s *BadgerStore) Latest(ctx context.Context, ip string) (Sample, error) {
	addr, err := parseIP(ip)
	if err != nil {
		return Sample{}, err
	}
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	var sample Sample
	found := false
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchSize = 1
		prefix := nodePrefix(addr)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek lands on the last key <= the seek key.
		seek := append(prefix[:len(prefix):len(prefix)], 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		it.Seek(seek)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		found = true
		return it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &sample)
		})
	})
	if err != nil {
		return Sample{}, fmt.Errorf("latest sample: %w", err)
	}
	if !found {
		return Sample{}, fmt.Errorf("%w for %s", ErrNotFound, ip)
	}
	return sample, nil
}

// RunGC reclaims value log space until nothing is left to rewrite.
func (s *BadgerStore) RunGC(ratio float64) error {
	for {
		err := s.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) ||
			errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

var _ Store = (*BadgerStore)(nil)
