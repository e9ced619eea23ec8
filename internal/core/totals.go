package core

// BudgetTotals is a derived view over the current ledger contents. It is
// recomputed on every call, never cached, so the committed-total invariant
// holds by construction. Pending spend is diagnostic only and excluded from
// the committed total; Remaining may be negative when over budget.
type BudgetTotals struct {
	AnnualBudget   Money   `json:"annualBudget"`
	TotalPaid      Money   `json:"totalPaid"`
	TotalApproved  Money   `json:"totalApproved"`
	TotalAccruals  Money   `json:"totalAccruals"`
	TotalPending   Money   `json:"totalPending"`
	TotalCommitted Money   `json:"totalCommitted"`
	Remaining      Money   `json:"remaining"`
	SpendPercent   float64 `json:"spendPercent"`

	PendingCount  int `json:"pendingCount"`
	ApprovedCount int `json:"approvedCount"`
	PaidCount     int `json:"paidCount"`
	RejectedCount int `json:"rejectedCount"`
	AccrualCount  int `json:"accrualCount"`
}

// Totals computes the budget view from the current collections.
func (l *Ledger) Totals() BudgetTotals {
	t := BudgetTotals{
		AnnualBudget:  l.annualBudget,
		TotalPaid:     sumInvoices(l.paid),
		TotalApproved: sumInvoices(l.approved),
		TotalPending:  sumInvoices(l.pending),
		TotalAccruals: sumAccruals(l.accruals),
		PendingCount:  len(l.pending),
		ApprovedCount: len(l.approved),
		PaidCount:     len(l.paid),
		RejectedCount: len(l.rejected),
		AccrualCount:  len(l.accruals),
	}
	t.TotalCommitted = t.TotalPaid.Add(t.TotalApproved).Add(t.TotalAccruals)
	t.Remaining = t.AnnualBudget.Sub(t.TotalCommitted)
	if t.AnnualBudget.Cents > 0 {
		t.SpendPercent = float64(t.TotalCommitted.Cents) / float64(t.AnnualBudget.Cents) * 100
	}
	return t
}

func sumInvoices(list []Invoice) Money {
	var total Money
	for _, inv := range list {
		total = total.Add(inv.Amount)
	}
	return total
}

func sumAccruals(list []Accrual) Money {
	var total Money
	for _, a := range list {
		total = total.Add(a.Amount)
	}
	return total
}
