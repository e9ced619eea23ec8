// Package memory provides an in-memory snapshot store, optionally backed by
// a JSON file on disk. It doubles as the dependency-free default backend and
// the test double for anything that needs a snapshot.Store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ebilling/internal/core"
)

type Store struct {
	mu    sync.Mutex
	state *core.LedgerState
	path  string // empty for pure in-memory stores
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{}
}

// NewFromFile returns a store that seeds from and flushes to a JSON file.
// A missing or unreadable file is treated as a first run.
func NewFromFile(path string) *Store {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var state core.LedgerState
	if err := json.Unmarshal(data, &state); err != nil {
		return s
	}
	s.state = &state
	return s
}

func (s *Store) Load(_ context.Context) (*core.LedgerState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, false, nil
	}
	state := *s.state
	return &state, true, nil
}

func (s *Store) Save(_ context.Context, state core.LedgerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &state
	if s.path == "" {
		return nil
	}
	return s.flush(state)
}

// flush writes to a temp file and renames it over the target, so a crash
// mid-write never leaves a torn snapshot behind.
func (s *Store) flush(state core.LedgerState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
