// Package storage persists ledger snapshots in a local SQLite database.
// The whole state lives in a single versioned row; saving replaces the row
// in one statement, so a reader either sees the previous state or the new
// one, never a partial write.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ebilling/internal/core"

	_ "modernc.org/sqlite"
)

const snapshotRowID = 1

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements snapshot.Store.
func (s *SQLiteStore) Load(ctx context.Context) (*core.LedgerState, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM snapshots WHERE id = ?`, snapshotRowID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}

	var state core.LedgerState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return &state, true, nil
}

// Save implements snapshot.Store.
func (s *SQLiteStore) Save(ctx context.Context, state core.LedgerState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, state, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, saved_at = excluded.saved_at`,
		snapshotRowID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved to SQLite",
		"bytes", len(raw),
		"pending", len(state.Pending),
		"approved", len(state.Approved),
		"paid", len(state.Paid),
		"rejected", len(state.Rejected),
		"accruals", len(state.Accruals))

	return nil
}
