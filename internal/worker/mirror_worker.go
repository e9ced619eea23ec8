// Package worker keeps the Google Sheets mirror in step with the ledger.
// It reacts to AMQP change events and also catches up on a timer, so a
// missed event only delays the mirror, never loses data.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ebilling/internal/amqp"
	"ebilling/internal/core"
	"ebilling/internal/snapshot"
)

// Mirror is the outbound port to the sheet writer. *google.Client
// satisfies it; tests substitute a fake.
type Mirror interface {
	WriteSnapshot(ctx context.Context, state core.LedgerState) error
}

// MirrorWorker reads the latest snapshot from the store and pushes it to
// the Sheets mirror.
type MirrorWorker struct {
	store  snapshot.Store
	mirror Mirror

	mu           sync.Mutex
	lastMirrored time.Time
}

func NewMirrorWorker(store snapshot.Store, mirror Mirror) *MirrorWorker {
	return &MirrorWorker{store: store, mirror: mirror}
}

// HandleEvent processes a single ledger event by re-mirroring the current
// snapshot. The event payload itself only triggers the refresh; state comes
// from the store.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Mirroring ledger after event",
		"event", msg.Event,
		"record_id", msg.RecordID)
	return w.MirrorOnce(ctx)
}

// MirrorOnce reads the latest snapshot and rewrites the mirror sheet.
// A missing snapshot (first run) is a no-op.
func (w *MirrorWorker) MirrorOnce(ctx context.Context) error {
	state, found, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		slog.DebugContext(ctx, "No snapshot to mirror yet")
		return nil
	}

	if err := w.mirror.WriteSnapshot(ctx, *state); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}

	w.mu.Lock()
	w.lastMirrored = time.Now()
	w.mu.Unlock()

	return nil
}

// LastMirrored returns when the mirror last succeeded (zero if never).
func (w *MirrorWorker) LastMirrored() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastMirrored
}

// RunPeriodic mirrors on the given interval until ctx is done. Errors are
// logged and retried on the next tick.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.MirrorOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic mirror failed", "error", err)
			}
		}
	}
}
