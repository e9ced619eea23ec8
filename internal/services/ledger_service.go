// Package services orchestrates the ledger core against its collaborators:
// the snapshot store and the optional event publisher.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ebilling/internal/amqp"
	"ebilling/internal/core"
	"ebilling/internal/snapshot"
)

// EventPublisher notifies downstream consumers of ledger changes.
// *amqp.Client satisfies it; tests substitute a fake.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event, recordID string) error
}

// LedgerService serializes access to the ledger, persists the full snapshot
// after every mutating operation, and publishes change events best-effort.
// The ledger stays the single logical writer model from the core; the mutex
// only guards against overlapping HTTP requests.
type LedgerService struct {
	mu        sync.Mutex
	ledger    *core.Ledger
	store     snapshot.Store
	publisher EventPublisher
}

func NewLedgerService(store snapshot.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		ledger:    core.NewLedger(),
		store:     store,
		publisher: publisher,
	}
}

// Init loads the last snapshot into the ledger. A missing snapshot is a
// normal first run; a load failure degrades to the default initial state
// rather than refusing to start.
func (s *LedgerService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, found, err := s.store.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Snapshot load failed, starting from defaults", "error", err)
		return nil
	}
	if !found {
		slog.InfoContext(ctx, "No prior snapshot, starting fresh")
		return nil
	}

	s.ledger.Restore(*state)
	slog.InfoContext(ctx, "Ledger restored from snapshot",
		"pending", len(state.Pending),
		"approved", len(state.Approved),
		"paid", len(state.Paid),
		"rejected", len(state.Rejected),
		"accruals", len(state.Accruals))
	return nil
}

// AddPending admits a candidate invoice into the pending collection.
func (s *LedgerService) AddPending(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	admitted, err := s.ledger.AddPending(inv)
	if err != nil {
		return core.Invoice{}, err
	}
	if err := s.persist(ctx); err != nil {
		return admitted, err
	}
	s.publish(ctx, amqp.EventInvoiceReceived, admitted.ID)
	return admitted, nil
}

// Approve moves a pending invoice to approved.
func (s *LedgerService) Approve(ctx context.Context, id string) (core.Invoice, error) {
	return s.transition(ctx, amqp.EventInvoiceApproved, func() (core.Invoice, error) {
		return s.ledger.Approve(id)
	})
}

// MarkPaid moves an approved invoice to paid.
func (s *LedgerService) MarkPaid(ctx context.Context, id string) (core.Invoice, error) {
	return s.transition(ctx, amqp.EventInvoicePaid, func() (core.Invoice, error) {
		return s.ledger.MarkPaid(id)
	})
}

// Reject moves an invoice from the given source collection to rejected.
func (s *LedgerService) Reject(ctx context.Context, id string, from core.InvoiceState) (core.Invoice, error) {
	return s.transition(ctx, amqp.EventInvoiceRejected, func() (core.Invoice, error) {
		return s.ledger.Reject(id, from)
	})
}

func (s *LedgerService) transition(ctx context.Context, event string, op func() (core.Invoice, error)) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := op()
	if err != nil {
		return core.Invoice{}, err
	}
	if err := s.persist(ctx); err != nil {
		return inv, err
	}
	s.publish(ctx, event, inv.ID)
	return inv, nil
}

// AddAccrual records an unbilled work estimate.
func (s *LedgerService) AddAccrual(ctx context.Context, a core.Accrual) (core.Accrual, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := s.ledger.AddAccrual(a)
	if err != nil {
		return core.Accrual{}, err
	}
	if err := s.persist(ctx); err != nil {
		return added, err
	}
	s.publish(ctx, amqp.EventAccrualAdded, added.ID)
	return added, nil
}

// RemoveAccrual acknowledges an accrual whose invoice arrived.
func (s *LedgerService) RemoveAccrual(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.RemoveAccrual(id); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.publish(ctx, amqp.EventAccrualRemoved, id)
	return nil
}

// SetAnnualBudget replaces the budget ceiling.
func (s *LedgerService) SetAnnualBudget(ctx context.Context, m core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.SetAnnualBudget(m); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.publish(ctx, amqp.EventBudgetUpdated, "")
	return nil
}

// Reset clears all ledger state and restores defaults.
func (s *LedgerService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Reset()
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.publish(ctx, amqp.EventLedgerReset, "")
	return nil
}

// Totals returns the derived budget view.
func (s *LedgerService) Totals() core.BudgetTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Totals()
}

// Invoices returns a copy of one collection.
func (s *LedgerService) Invoices(state core.InvoiceState) []core.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Invoices(state)
}

// Accruals returns a copy of the accrual list.
func (s *LedgerService) Accruals() []core.Accrual {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Accruals()
}

// persist saves the whole ledger state. The in-memory mutation already
// happened; a failed save is surfaced so the caller can retry, while the
// ledger stays internally consistent.
func (s *LedgerService) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// publish notifies the mirror worker. Failures are logged and swallowed:
// the local save already succeeded, and the worker catches up periodically.
func (s *LedgerService) publish(ctx context.Context, event, recordID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event, recordID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"event", event,
			"record_id", recordID,
			"error", err)
	}
}
