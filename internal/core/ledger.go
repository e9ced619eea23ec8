package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultAnnualBudget is the budget ceiling a fresh or reset ledger starts
// with: 500,000.00.
var DefaultAnnualBudget = Money{Cents: 50_000_000}

// Ledger owns the canonical invoice collections, the accruals, and the
// annual budget. Every invoice id lives in exactly one of the four
// collections; transitions remove from the source and insert into the
// destination as a single in-memory update, so no intermediate state is
// observable. The Ledger itself is not goroutine safe; callers serialize
// access (see services.LedgerService).
type Ledger struct {
	annualBudget Money
	pending      []Invoice
	approved     []Invoice
	paid         []Invoice
	rejected     []Invoice
	accruals     []Accrual
}

// LedgerState is the full serializable state exchanged with a snapshot
// store. It is a value copy; mutating it never affects the ledger.
type LedgerState struct {
	AnnualBudget Money     `json:"annualBudget"`
	Accruals     []Accrual `json:"accruals"`
	Pending      []Invoice `json:"pending"`
	Approved     []Invoice `json:"approved"`
	Paid         []Invoice `json:"paid"`
	Rejected     []Invoice `json:"rejected"`
}

func NewLedger() *Ledger {
	return &Ledger{annualBudget: DefaultAnnualBudget}
}

// AddPending admits a candidate invoice into the pending collection,
// assigning an id if the candidate carries none and stamping the time it
// was received. A supplied id must not exist anywhere in the ledger; every
// id lives in at most one collection. The candidate's date defaults to
// today when unset and its provenance is bounded at MaxProvenanceRunes.
func (l *Ledger) AddPending(inv Invoice) (Invoice, error) {
	if err := inv.Validate(); err != nil {
		return Invoice{}, err
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	} else if l.contains(inv.ID) {
		return Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, ErrDuplicateID)
	}
	inv.Provenance = TruncateProvenance(inv.Provenance)
	if inv.Date.IsZero() {
		inv.Date = Today()
	}
	inv = inv.clone()
	stamp(&inv, StatePending)
	l.pending = append(l.pending, inv)
	return inv.clone(), nil
}

// Approve moves a pending invoice into the approved collection.
func (l *Ledger) Approve(id string) (Invoice, error) {
	return l.transition(id, StatePending, StateApproved)
}

// MarkPaid moves an approved invoice into the paid collection. Paid is
// terminal.
func (l *Ledger) MarkPaid(id string) (Invoice, error) {
	return l.transition(id, StateApproved, StatePaid)
}

// Reject moves an invoice from pending or approved into the rejected
// collection. Rejected is terminal.
func (l *Ledger) Reject(id string, from InvoiceState) (Invoice, error) {
	if from != StatePending && from != StateApproved {
		if from.Terminal() {
			return Invoice{}, fmt.Errorf("reject from %s: %w", from, ErrTerminalState)
		}
		return Invoice{}, fmt.Errorf("reject from %q: %w", from, ErrNotFound)
	}
	return l.transition(id, from, StateRejected)
}

func (l *Ledger) transition(id string, from, to InvoiceState) (Invoice, error) {
	source := l.collection(from)
	rest, inv, ok := removeByID(*source, id)
	if !ok {
		return Invoice{}, fmt.Errorf("%s invoice %s: %w", from, id, ErrNotFound)
	}
	stamp(&inv, to)
	*source = rest
	dest := l.collection(to)
	*dest = append(*dest, inv)
	return inv.clone(), nil
}

// contains reports whether id exists in any of the four collections.
func (l *Ledger) contains(id string) bool {
	for _, list := range [][]Invoice{l.pending, l.approved, l.paid, l.rejected} {
		for _, inv := range list {
			if inv.ID == id {
				return true
			}
		}
	}
	return false
}

func (l *Ledger) collection(s InvoiceState) *[]Invoice {
	switch s {
	case StatePending:
		return &l.pending
	case StateApproved:
		return &l.approved
	case StatePaid:
		return &l.paid
	default:
		return &l.rejected
	}
}

// Invoices returns a copy of one collection, in admission order.
func (l *Ledger) Invoices(s InvoiceState) []Invoice {
	return cloneInvoices(*l.collection(s))
}

// AddAccrual records an unbilled work estimate. Accruals are independent of
// the invoice pipeline.
func (l *Ledger) AddAccrual(a Accrual) (Accrual, error) {
	if err := a.Validate(); err != nil {
		return Accrual{}, err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Description == "" {
		a.Description = DefaultAccrualDescription
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	l.accruals = append(l.accruals, a)
	return a, nil
}

// RemoveAccrual drops an accrual by id. This is a manual acknowledgment
// that the matching invoice arrived; no reconciliation happens.
func (l *Ledger) RemoveAccrual(id string) error {
	for i, a := range l.accruals {
		if a.ID == id {
			l.accruals = append(l.accruals[:i], l.accruals[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("accrual %s: %w", id, ErrNotFound)
}

// Accruals returns a copy of the accrual list, in creation order.
func (l *Ledger) Accruals() []Accrual {
	return append([]Accrual(nil), l.accruals...)
}

// SetAnnualBudget replaces the budget ceiling. The value must be strictly
// positive; there is no historical versioning.
func (l *Ledger) SetAnnualBudget(m Money) error {
	if m.Cents <= 0 {
		return ErrInvalidBudget
	}
	l.annualBudget = m
	return nil
}

func (l *Ledger) AnnualBudget() Money {
	return l.annualBudget
}

// Reset clears all collections and accruals and restores the default
// budget ceiling. Destructive and non-recoverable.
func (l *Ledger) Reset() {
	l.annualBudget = DefaultAnnualBudget
	l.pending = nil
	l.approved = nil
	l.paid = nil
	l.rejected = nil
	l.accruals = nil
}

// Snapshot returns a value copy of the full ledger state.
func (l *Ledger) Snapshot() LedgerState {
	return LedgerState{
		AnnualBudget: l.annualBudget,
		Accruals:     append([]Accrual(nil), l.accruals...),
		Pending:      cloneInvoices(l.pending),
		Approved:     cloneInvoices(l.approved),
		Paid:         cloneInvoices(l.paid),
		Rejected:     cloneInvoices(l.rejected),
	}
}

// Restore replaces the ledger contents with a previously saved state.
// A non-positive budget in the state falls back to the default ceiling.
func (l *Ledger) Restore(state LedgerState) {
	l.annualBudget = state.AnnualBudget
	if l.annualBudget.Cents <= 0 {
		l.annualBudget = DefaultAnnualBudget
	}
	l.accruals = append([]Accrual(nil), state.Accruals...)
	l.pending = cloneInvoices(state.Pending)
	l.approved = cloneInvoices(state.Approved)
	l.paid = cloneInvoices(state.Paid)
	l.rejected = cloneInvoices(state.Rejected)
}

func stamp(inv *Invoice, s InvoiceState) {
	if inv.Stamps == nil {
		inv.Stamps = make(map[InvoiceState]time.Time, 1)
	}
	inv.Stamps[s] = time.Now()
}

func removeByID(list []Invoice, id string) ([]Invoice, Invoice, bool) {
	for i, inv := range list {
		if inv.ID == id {
			rest := make([]Invoice, 0, len(list)-1)
			rest = append(rest, list[:i]...)
			rest = append(rest, list[i+1:]...)
			return rest, inv, true
		}
	}
	return list, Invoice{}, false
}

func cloneInvoices(list []Invoice) []Invoice {
	if list == nil {
		return nil
	}
	out := make([]Invoice, len(list))
	for i, inv := range list {
		out[i] = inv.clone()
	}
	return out
}
