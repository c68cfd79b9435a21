// Package store persists versioned ledger snapshots. Each ledger instance
// is stored as a single record guarded by an optimistic version check, so
// commits against a stale version are rejected and operations on one
// instance stay totally ordered even when the hosting environment provides
// no transaction manager of its own.
package store

import (
	"context"
	"errors"

	"github.com/pflow-xyz/go-treasury/ledger"
)

var (
	// ErrNotFound is returned when no snapshot exists for the ledger ID.
	ErrNotFound = errors.New("store: ledger not found")

	// ErrVersionConflict is returned when the expected version does not
	// match the stored one. The caller must reload and retry.
	ErrVersionConflict = errors.New("store: version conflict")
)

// Store is the persistence interface for ledger snapshots.
type Store interface {
	// Save persists a snapshot. expected is the version the caller last
	// observed; pass -1 to create a new record. On success the new
	// version is returned.
	Save(ctx context.Context, snap ledger.Snapshot, expected int64) (int64, error)

	// Load returns the latest snapshot and its version for a ledger ID.
	Load(ctx context.Context, id string) (ledger.Snapshot, int64, error)

	// List returns all stored ledger IDs.
	List(ctx context.Context) ([]string, error)

	// Close releases underlying resources.
	Close() error
}
