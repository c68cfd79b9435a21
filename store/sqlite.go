package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pflow-xyz/go-treasury/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists snapshots in a SQLite database. The whole snapshot
// is stored as one JSON document per ledger so a record is always read and
// written as a consistent unit.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at the given
// path. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ledgers (
		id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		state TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save persists a snapshot with an optimistic version check, inside a
// single transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap ledger.Snapshot, expected int64) (int64, error) {
	state, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("encoding snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM ledgers WHERE id = ?`, snap.ID).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if expected != -1 {
			return 0, ErrVersionConflict
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ledgers (id, version, state, updated_at) VALUES (?, ?, ?, ?)`,
			snap.ID, int64(0), string(state), time.Now().UTC())
		if err != nil {
			return 0, err
		}
		current = 0
	case err != nil:
		return 0, err
	default:
		if current != expected {
			return 0, ErrVersionConflict
		}
		current++
		_, err = tx.ExecContext(ctx,
			`UPDATE ledgers SET version = ?, state = ?, updated_at = ? WHERE id = ?`,
			current, string(state), time.Now().UTC(), snap.ID)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return current, nil
}

// Load returns the latest snapshot and version for a ledger ID.
func (s *SQLiteStore) Load(ctx context.Context, id string) (ledger.Snapshot, int64, error) {
	var (
		version int64
		state   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, state FROM ledgers WHERE id = ?`, id).Scan(&version, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Snapshot{}, 0, ErrNotFound
	}
	if err != nil {
		return ledger.Snapshot{}, 0, err
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal([]byte(state), &snap); err != nil {
		return ledger.Snapshot{}, 0, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, version, nil
}

// List returns all stored ledger IDs in sorted order.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM ledgers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
