// Package backend selects and constructs the snapshot store the application
// runs against: sqlite, a JSON file, or pure memory.
package backend

import (
	"context"

	"ebilling/internal/snapshot"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the store instance and an optional cleanup function.
type Result struct {
	Store   snapshot.Store
	Cleanup CleanupFunc
}

// Factory creates snapshot stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Type identifies a snapshot backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	FileBackend   Type = "file"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, FileBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{SQLiteBackend, FileBackend, MemoryBackend}
}
