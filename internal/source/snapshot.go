// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package source

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/tomtom215/nodeglobe/internal/cluster"
)

const snapshotKey = "snapshot:last"

// Snapshot is the last node set that was pushed into the controller.
type Snapshot struct {
	Version   uint64         `json:"version"`
	FetchedAt time.Time      `json:"fetched_at"`
	Nodes     []cluster.Node `json:"nodes"`
}

// SnapshotStore keeps the last good snapshot in BadgerDB, zstd compressed.
type SnapshotStore struct {
	db  *badger.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewSnapshotStore creates a store on db.
func NewSnapshotStore(db *badger.DB) (*SnapshotStore, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &SnapshotStore{db: db, enc: enc, dec: dec}, nil
}

// Save replaces the stored snapshot.
func (s *SnapshotStore) Save(snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	compressed := s.enc.EncodeAll(raw, make([]byte, 0, len(raw)/4))

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), compressed)
	})
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or ErrNoSnapshot.
func (s *SnapshotStore) Load() (Snapshot, error) {
	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Close releases the codec resources. The database is not closed.
func (s *SnapshotStore) Close() {
	_ = s.enc.Close()
	s.dec.Close()
}
