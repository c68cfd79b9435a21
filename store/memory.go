package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pflow-xyz/go-treasury/ledger"
)

// MemoryStore keeps snapshots in process memory. Useful for tests and for
// hosts that persist elsewhere.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	snap    ledger.Snapshot
	version int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

// Save persists a snapshot with an optimistic version check.
func (s *MemoryStore) Save(_ context.Context, snap ledger.Snapshot, expected int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[snap.ID]
	switch {
	case !exists && expected != -1:
		return 0, ErrVersionConflict
	case exists && rec.version != expected:
		return 0, ErrVersionConflict
	}

	version := expected + 1
	s.records[snap.ID] = memoryRecord{snap: cloneSnapshot(snap), version: version}
	return version, nil
}

// Load returns the latest snapshot and version for a ledger ID.
func (s *MemoryStore) Load(_ context.Context, id string) (ledger.Snapshot, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return ledger.Snapshot{}, 0, ErrNotFound
	}
	return cloneSnapshot(rec.snap), rec.version, nil
}

// List returns all stored ledger IDs in sorted order.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// cloneSnapshot copies the entry slice so callers cannot alias stored
// state.
func cloneSnapshot(snap ledger.Snapshot) ledger.Snapshot {
	entries := make([]ledger.CollateralEntry, len(snap.Entries))
	for i, e := range snap.Entries {
		id := make([]byte, len(e.ID))
		copy(id, e.ID)
		entries[i] = ledger.CollateralEntry{ID: id, Description: e.Description, Value: e.Value}
	}
	snap.Entries = entries
	return snap
}

var _ Store = (*MemoryStore)(nil)
