// Package snapshot defines the port to whatever keeps the ledger state
// between runs. The ledger is agnostic to where the blob lives; stores are
// whole-state and atomic, with no partial writes visible to callers.
package snapshot

import (
	"context"

	"ebilling/internal/core"
)

// Store persists and recovers the full ledger state.
type Store interface {
	// Load returns the last saved state. found is false on a first run,
	// which is a normal, non-error condition.
	Load(ctx context.Context) (state *core.LedgerState, found bool, err error)

	// Save replaces the stored state with the given one.
	Save(ctx context.Context, state core.LedgerState) error
}
