package core

import (
	"errors"
	"strings"
	"testing"
)

func mustAddPending(t *testing.T, l *Ledger, vendor string, cents int64) Invoice {
	t.Helper()
	inv, err := l.AddPending(Invoice{Vendor: vendor, Amount: Money{Cents: cents}})
	if err != nil {
		t.Fatalf("AddPending(%s): %v", vendor, err)
	}
	return inv
}

// collectionsContaining reports how many of the four collections hold id.
func collectionsContaining(l *Ledger, id string) int {
	count := 0
	for _, s := range []InvoiceState{StatePending, StateApproved, StatePaid, StateRejected} {
		for _, inv := range l.Invoices(s) {
			if inv.ID == id {
				count++
			}
		}
	}
	return count
}

func TestAddPendingAssignsIDAndStamps(t *testing.T) {
	l := NewLedger()

	inv := mustAddPending(t, l, "Smith & Jones LLP", 125000)
	if inv.ID == "" {
		t.Error("admitted invoice has no id")
	}
	if _, ok := inv.StampedAt(StatePending); !ok {
		t.Error("admitted invoice has no pending stamp")
	}
	if inv.Date.IsZero() {
		t.Error("date did not default to today")
	}
	if got := collectionsContaining(l, inv.ID); got != 1 {
		t.Errorf("invoice lives in %d collections, want 1", got)
	}
}

func TestAddPendingKeepsSuppliedID(t *testing.T) {
	l := NewLedger()

	inv, err := l.AddPending(Invoice{ID: "inv-42", Vendor: "Acme", Amount: Money{Cents: 100}})
	if err != nil {
		t.Fatalf("AddPending: %v", err)
	}
	if inv.ID != "inv-42" {
		t.Errorf("id = %q, want inv-42", inv.ID)
	}
}

func TestAddPendingRejectsDuplicateID(t *testing.T) {
	l := NewLedger()

	first, err := l.AddPending(Invoice{ID: "dup", Vendor: "Acme", Amount: Money{Cents: 100}})
	if err != nil {
		t.Fatalf("AddPending: %v", err)
	}
	if _, err := l.Approve(first.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// The id now lives in approved; re-admitting it must not create a twin.
	if _, err := l.AddPending(Invoice{ID: "dup", Vendor: "Other", Amount: Money{Cents: 200}}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("re-admit approved id: got %v, want ErrDuplicateID", err)
	}
	if got := collectionsContaining(l, "dup"); got != 1 {
		t.Errorf("id lives in %d collections, want 1", got)
	}

	// Same check against an id still sitting in pending.
	second := mustAddPending(t, l, "Second", 300)
	if _, err := l.AddPending(Invoice{ID: second.ID, Vendor: "Third", Amount: Money{Cents: 400}}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("re-admit pending id: got %v, want ErrDuplicateID", err)
	}
	if got := collectionsContaining(l, second.ID); got != 1 {
		t.Errorf("id lives in %d collections, want 1", got)
	}
}

func TestAddPendingBoundsProvenance(t *testing.T) {
	l := NewLedger()

	long := strings.Repeat("x", MaxProvenanceRunes+200)
	inv, err := l.AddPending(Invoice{Vendor: "Acme", Amount: Money{Cents: 100}, Provenance: long})
	if err != nil {
		t.Fatalf("AddPending: %v", err)
	}
	if n := len([]rune(inv.Provenance)); n != MaxProvenanceRunes {
		t.Errorf("admitted provenance = %d runes, want %d", n, MaxProvenanceRunes)
	}
	if got := l.Invoices(StatePending)[0].Provenance; len([]rune(got)) != MaxProvenanceRunes {
		t.Errorf("stored provenance = %d runes, want %d", len([]rune(got)), MaxProvenanceRunes)
	}
}

func TestAddPendingValidation(t *testing.T) {
	l := NewLedger()

	if _, err := l.AddPending(Invoice{Amount: Money{Cents: 100}}); !errors.Is(err, ErrEmptyVendor) {
		t.Errorf("empty vendor: got %v, want ErrEmptyVendor", err)
	}
	if _, err := l.AddPending(Invoice{Vendor: "Acme", Amount: Money{Cents: -5}}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	if got := len(l.Invoices(StatePending)); got != 0 {
		t.Errorf("rejected candidates were admitted: %d pending", got)
	}
}

func TestLifecyclePendingToPaid(t *testing.T) {
	l := NewLedger()
	inv := mustAddPending(t, l, "Acme Legal LLC", 50000)

	approved, err := l.Approve(inv.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, ok := approved.StampedAt(StateApproved); !ok {
		t.Error("approved invoice has no approval stamp")
	}
	if got := collectionsContaining(l, inv.ID); got != 1 {
		t.Errorf("invoice lives in %d collections after approve, want 1", got)
	}

	paid, err := l.MarkPaid(inv.ID)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if _, ok := paid.StampedAt(StatePaid); !ok {
		t.Error("paid invoice has no payment stamp")
	}
	if _, ok := paid.StampedAt(StatePending); !ok {
		t.Error("earlier stamps were dropped during transitions")
	}
	if got := collectionsContaining(l, inv.ID); got != 1 {
		t.Errorf("invoice lives in %d collections after payment, want 1", got)
	}
	if got := len(l.Invoices(StatePaid)); got != 1 {
		t.Errorf("paid collection has %d invoices, want 1", got)
	}
}

func TestTransitionUnknownID(t *testing.T) {
	l := NewLedger()
	inv := mustAddPending(t, l, "Acme", 100)

	if _, err := l.Approve("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Approve unknown id: got %v, want ErrNotFound", err)
	}
	// MarkPaid searches approved only; a pending id is not found there.
	if _, err := l.MarkPaid(inv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkPaid on pending invoice: got %v, want ErrNotFound", err)
	}
	if got := len(l.Invoices(StatePending)); got != 1 {
		t.Errorf("failed transition changed state: %d pending, want 1", got)
	}
}

func TestRejectFromPendingAndApproved(t *testing.T) {
	l := NewLedger()
	first := mustAddPending(t, l, "First LLP", 1000)
	second := mustAddPending(t, l, "Second LLP", 2000)
	if _, err := l.Approve(second.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if _, err := l.Reject(first.ID, StatePending); err != nil {
		t.Fatalf("Reject from pending: %v", err)
	}
	if _, err := l.Reject(second.ID, StateApproved); err != nil {
		t.Fatalf("Reject from approved: %v", err)
	}
	if got := len(l.Invoices(StateRejected)); got != 2 {
		t.Errorf("rejected collection has %d invoices, want 2", got)
	}
}

func TestRejectFromIllegalSource(t *testing.T) {
	l := NewLedger()
	inv := mustAddPending(t, l, "Acme", 100)

	if _, err := l.Reject(inv.ID, StatePaid); !errors.Is(err, ErrTerminalState) {
		t.Errorf("reject from paid: got %v, want ErrTerminalState", err)
	}
	if _, err := l.Reject(inv.ID, StateRejected); !errors.Is(err, ErrTerminalState) {
		t.Errorf("reject from rejected: got %v, want ErrTerminalState", err)
	}
	if _, err := l.Reject(inv.ID, InvoiceState("archived")); !errors.Is(err, ErrNotFound) {
		t.Errorf("reject from unknown state: got %v, want ErrNotFound", err)
	}
}

func TestTerminalStatesAcceptNoTransitions(t *testing.T) {
	l := NewLedger()
	inv := mustAddPending(t, l, "Acme", 100)
	if _, err := l.Approve(inv.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := l.MarkPaid(inv.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := l.Approve(inv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("approve paid invoice: got %v, want ErrNotFound", err)
	}
	if _, err := l.MarkPaid(inv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("re-pay paid invoice: got %v, want ErrNotFound", err)
	}
	if _, err := l.Reject(inv.ID, StatePending); !errors.Is(err, ErrNotFound) {
		t.Errorf("reject paid invoice: got %v, want ErrNotFound", err)
	}
	if got := collectionsContaining(l, inv.ID); got != 1 {
		t.Errorf("invoice lives in %d collections, want 1", got)
	}
}

func TestAccrualLifecycle(t *testing.T) {
	l := NewLedger()

	a, err := l.AddAccrual(Accrual{Vendor: "Acme Legal", Amount: Money{Cents: 30000}})
	if err != nil {
		t.Fatalf("AddAccrual: %v", err)
	}
	if a.ID == "" {
		t.Error("accrual has no id")
	}
	if a.Description != DefaultAccrualDescription {
		t.Errorf("description = %q, want %q", a.Description, DefaultAccrualDescription)
	}
	if a.CreatedAt.IsZero() {
		t.Error("accrual has no creation time")
	}

	if err := l.RemoveAccrual(a.ID); err != nil {
		t.Fatalf("RemoveAccrual: %v", err)
	}
	if got := len(l.Accruals()); got != 0 {
		t.Errorf("accruals after removal = %d, want 0", got)
	}
	if err := l.RemoveAccrual(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove missing accrual: got %v, want ErrNotFound", err)
	}
}

func TestSetAnnualBudget(t *testing.T) {
	l := NewLedger()

	if err := l.SetAnnualBudget(Money{}); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("zero budget: got %v, want ErrInvalidBudget", err)
	}
	if err := l.SetAnnualBudget(Money{Cents: -100}); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("negative budget: got %v, want ErrInvalidBudget", err)
	}
	if got := l.AnnualBudget(); got != DefaultAnnualBudget {
		t.Errorf("failed update changed the budget: %v", got)
	}

	if err := l.SetAnnualBudget(Money{Cents: 100_000_00}); err != nil {
		t.Fatalf("SetAnnualBudget: %v", err)
	}
	if got := l.AnnualBudget().Cents; got != 100_000_00 {
		t.Errorf("budget = %d, want 10000000", got)
	}
}

func TestTotalsCommittedIdentity(t *testing.T) {
	l := NewLedger()

	mustAddPending(t, l, "Pending LLP", 10000)
	approved := mustAddPending(t, l, "Approved LLP", 20000)
	paid := mustAddPending(t, l, "Paid LLP", 30000)
	rejected := mustAddPending(t, l, "Rejected LLP", 40000)
	if _, err := l.Approve(approved.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Approve(paid.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := l.MarkPaid(paid.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Reject(rejected.ID, StatePending); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddAccrual(Accrual{Vendor: "WIP", Amount: Money{Cents: 5000}}); err != nil {
		t.Fatal(err)
	}

	got := l.Totals()

	if got.TotalPaid.Cents != 30000 {
		t.Errorf("TotalPaid = %d, want 30000", got.TotalPaid.Cents)
	}
	if got.TotalApproved.Cents != 20000 {
		t.Errorf("TotalApproved = %d, want 20000", got.TotalApproved.Cents)
	}
	if got.TotalAccruals.Cents != 5000 {
		t.Errorf("TotalAccruals = %d, want 5000", got.TotalAccruals.Cents)
	}
	if got.TotalPending.Cents != 10000 {
		t.Errorf("TotalPending = %d, want 10000", got.TotalPending.Cents)
	}

	wantCommitted := got.TotalPaid.Add(got.TotalApproved).Add(got.TotalAccruals)
	if got.TotalCommitted != wantCommitted {
		t.Errorf("TotalCommitted = %d, want paid+approved+accruals = %d",
			got.TotalCommitted.Cents, wantCommitted.Cents)
	}
	if got.TotalCommitted.Cents != 55000 {
		t.Errorf("TotalCommitted = %d, want 55000 (pending and rejected excluded)", got.TotalCommitted.Cents)
	}
	if want := DefaultAnnualBudget.Sub(got.TotalCommitted); got.Remaining != want {
		t.Errorf("Remaining = %d, want %d", got.Remaining.Cents, want.Cents)
	}

	if got.PendingCount != 1 || got.ApprovedCount != 1 || got.PaidCount != 1 || got.RejectedCount != 1 || got.AccrualCount != 1 {
		t.Errorf("counts = %d/%d/%d/%d/%d, want 1 each",
			got.PendingCount, got.ApprovedCount, got.PaidCount, got.RejectedCount, got.AccrualCount)
	}
}

func TestTotalsRemainingGoesNegative(t *testing.T) {
	l := NewLedger()
	if err := l.SetAnnualBudget(Money{Cents: 100000}); err != nil {
		t.Fatal(err)
	}
	inv := mustAddPending(t, l, "Big Spend LLP", 150000)
	if _, err := l.Approve(inv.ID); err != nil {
		t.Fatal(err)
	}

	got := l.Totals()
	if got.Remaining.Cents != -50000 {
		t.Errorf("Remaining = %d, want -50000 (no clamping)", got.Remaining.Cents)
	}
	if got.SpendPercent != 150 {
		t.Errorf("SpendPercent = %v, want 150", got.SpendPercent)
	}
}

func TestReset(t *testing.T) {
	l := NewLedger()
	mustAddPending(t, l, "Acme", 100)
	if _, err := l.AddAccrual(Accrual{Vendor: "WIP", Amount: Money{Cents: 50}}); err != nil {
		t.Fatal(err)
	}
	if err := l.SetAnnualBudget(Money{Cents: 999}); err != nil {
		t.Fatal(err)
	}

	l.Reset()

	got := l.Totals()
	if got.PendingCount != 0 || got.AccrualCount != 0 {
		t.Errorf("reset left records behind: %d pending, %d accruals", got.PendingCount, got.AccrualCount)
	}
	if got.AnnualBudget != DefaultAnnualBudget {
		t.Errorf("budget after reset = %d, want default %d", got.AnnualBudget.Cents, DefaultAnnualBudget.Cents)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	l := NewLedger()
	inv := mustAddPending(t, l, "Acme Legal LLC", 50000)
	if _, err := l.Approve(inv.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddAccrual(Accrual{Vendor: "WIP", Amount: Money{Cents: 7000}}); err != nil {
		t.Fatal(err)
	}
	if err := l.SetAnnualBudget(Money{Cents: 200000}); err != nil {
		t.Fatal(err)
	}

	state := l.Snapshot()

	restored := NewLedger()
	restored.Restore(state)

	if got, want := restored.Totals(), l.Totals(); got != want {
		t.Errorf("restored totals = %+v, want %+v", got, want)
	}
	if got := restored.Invoices(StateApproved); len(got) != 1 || got[0].ID != inv.ID {
		t.Errorf("restored approved collection = %+v", got)
	}
}

func TestSnapshotIsValueCopy(t *testing.T) {
	l := NewLedger()
	mustAddPending(t, l, "Original Vendor", 100)

	state := l.Snapshot()
	state.Pending[0].Vendor = "Mutated Vendor"
	state.Pending[0].Stamps[StatePaid] = state.Pending[0].Stamps[StatePending]

	got := l.Invoices(StatePending)[0]
	if got.Vendor != "Original Vendor" {
		t.Errorf("snapshot mutation leaked into the ledger: vendor = %q", got.Vendor)
	}
	if _, ok := got.StampedAt(StatePaid); ok {
		t.Error("snapshot stamp mutation leaked into the ledger")
	}
}

func TestRestoreRepairsNonPositiveBudget(t *testing.T) {
	l := NewLedger()
	l.Restore(LedgerState{AnnualBudget: Money{Cents: -1}})
	if got := l.AnnualBudget(); got != DefaultAnnualBudget {
		t.Errorf("budget = %d, want default %d", got.Cents, DefaultAnnualBudget.Cents)
	}
}
