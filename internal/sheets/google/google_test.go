package google

import (
	"context"
	"testing"
	"time"

	"ebilling/internal/core"
)

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Error("missing spreadsheet id accepted")
	}
}

func TestSnapshotRowsLayout(t *testing.T) {
	state := core.LedgerState{
		AnnualBudget: core.Money{Cents: 50_000_000},
		Approved: []core.Invoice{
			{ID: "inv-1", Vendor: "Acme Legal LLC", Date: core.NewDate(2024, 3, 14), Amount: core.Money{Cents: 125000}},
		},
		Paid: []core.Invoice{
			{ID: "inv-2", Vendor: "Smith & Jones LLP", Date: core.NewDate(2024, 1, 2), Amount: core.Money{Cents: 50000}},
		},
		Accruals: []core.Accrual{
			{ID: "acc-1", Vendor: "Acme Legal LLC", Description: "Unbilled WIP", Amount: core.Money{Cents: 30000}, CreatedAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
		},
	}

	rows := snapshotRows(state)

	// Summary block: budget, paid, approved, accruals, committed, remaining.
	if got := rows[0][1]; got != "500000.00" {
		t.Errorf("annual budget cell = %v", got)
	}
	if got := rows[1][1]; got != "500.00" {
		t.Errorf("total paid cell = %v", got)
	}
	if got := rows[2][1]; got != "1250.00" {
		t.Errorf("total approved cell = %v", got)
	}
	if got := rows[3][1]; got != "300.00" {
		t.Errorf("total accruals cell = %v", got)
	}
	if got := rows[4][1]; got != "2050.00" {
		t.Errorf("total committed cell = %v", got)
	}
	if got := rows[5][1]; got != "497950.00" {
		t.Errorf("remaining cell = %v", got)
	}

	// Header plus one row per record.
	wantRows := 8 + 3
	if len(rows) != wantRows {
		t.Fatalf("row count = %d, want %d", len(rows), wantRows)
	}
	if got := rows[8]; got[0] != "approved" || got[1] != "Acme Legal LLC" || got[2] != "2024-03-14" {
		t.Errorf("approved row = %v", got)
	}
	if got := rows[9]; got[0] != "paid" || got[4] != "inv-2" {
		t.Errorf("paid row = %v", got)
	}
	if got := rows[10]; got[0] != "accrual" || got[5] != "Unbilled WIP" {
		t.Errorf("accrual row = %v", got)
	}
}

func TestTotalsOfCommitted(t *testing.T) {
	state := core.LedgerState{
		Pending:  []core.Invoice{{ID: "p", Vendor: "x", Amount: core.Money{Cents: 99999}}},
		Paid:     []core.Invoice{{ID: "a", Vendor: "x", Amount: core.Money{Cents: 100}}},
		Approved: []core.Invoice{{ID: "b", Vendor: "x", Amount: core.Money{Cents: 200}}},
		Accruals: []core.Accrual{{ID: "c", Vendor: "x", Amount: core.Money{Cents: 300}}},
	}

	got := totalsOf(state)
	if got.committed.Cents != 600 {
		t.Errorf("committed = %d, want 600 (pending excluded)", got.committed.Cents)
	}
}
