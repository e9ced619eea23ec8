package http

import (
	"fmt"
	"net/http"

	"ebilling/internal/core"
	"ebilling/internal/extract"
)

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Totals())
}

// handleExtract turns raw document text into a candidate invoice without
// mutating anything. The caller reviews the candidate and posts it back to
// /api/invoices to admit it.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	p := parseBody(r)
	if p.err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable request body"})
		return
	}

	text := p.Get("text")
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}

	candidate := extract.Extract(text, p.Get("filename"))
	writeJSON(w, http.StatusOK, candidate)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	state := core.InvoiceState(r.URL.Query().Get("state"))
	if state == "" {
		state = core.StatePending
	}
	if !state.IsValid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown state: " + string(state)})
		return
	}
	invoices := s.svc.Invoices(state)
	if invoices == nil {
		invoices = []core.Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

// handleAddInvoice admits a manual entry or a reviewed candidate into
// pending. Vendor and amount are required; the date defaults to today.
func (s *Server) handleAddInvoice(w http.ResponseWriter, r *http.Request) {
	p := parseBody(r)
	if p.err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable request body"})
		return
	}

	inv, err := invoiceFromBody(p)
	if err != nil {
		writeError(w, err)
		return
	}

	admitted, err := s.svc.AddPending(r.Context(), inv)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, admitted)
}

func invoiceFromBody(p *bodyParser) (core.Invoice, error) {
	vendor := p.Get("vendor")
	if vendor == "" {
		return core.Invoice{}, core.ErrEmptyVendor
	}

	amountRaw := p.Get("amount")
	if amountRaw == "" {
		return core.Invoice{}, core.ErrInvalidAmount
	}
	amount, err := core.ParseMoney(amountRaw)
	if err != nil {
		return core.Invoice{}, err
	}

	inv := core.Invoice{
		Vendor:     vendor,
		Amount:     amount,
		Provenance: p.Get("provenance"),
	}
	if inv.Provenance == "" {
		inv.Provenance = core.ManualProvenance
	}

	if raw := p.Get("date"); raw != "" {
		date, err := core.ParseISODate(raw)
		if err != nil {
			return core.Invoice{}, fmt.Errorf("%w: must be in YYYY-MM-DD form", core.ErrInvalidDate)
		}
		inv.Date = date
	}

	return inv, nil
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	inv, err := s.svc.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	inv, err := s.svc.MarkPaid(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// handleReject voids an invoice out of pending or approved; the source
// collection comes from the request body ("from") and defaults to pending.
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	p := parseBody(r)
	if p.err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable request body"})
		return
	}

	from := core.InvoiceState(p.Get("from"))
	if from == "" {
		from = core.StatePending
	}

	inv, err := s.svc.Reject(r.Context(), r.PathValue("id"), from)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleListAccruals(w http.ResponseWriter, _ *http.Request) {
	accruals := s.svc.Accruals()
	if accruals == nil {
		accruals = []core.Accrual{}
	}
	writeJSON(w, http.StatusOK, accruals)
}

func (s *Server) handleAddAccrual(w http.ResponseWriter, r *http.Request) {
	p := parseBody(r)
	if p.err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable request body"})
		return
	}

	vendor := p.Get("vendor")
	if vendor == "" {
		writeError(w, core.ErrEmptyVendor)
		return
	}
	amountRaw := p.Get("amount")
	if amountRaw == "" {
		writeError(w, core.ErrInvalidAmount)
		return
	}
	amount, err := core.ParseMoney(amountRaw)
	if err != nil {
		writeError(w, err)
		return
	}

	added, err := s.svc.AddAccrual(r.Context(), core.Accrual{
		Vendor:      vendor,
		Description: p.Get("description"),
		Amount:      amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleRemoveAccrual(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveAccrual(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p := parseBody(r)
	if p.err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable request body"})
		return
	}

	raw := p.Get("annualBudget")
	if raw == "" {
		writeError(w, core.ErrInvalidBudget)
		return
	}
	budget, err := core.ParseMoney(raw)
	if err != nil {
		writeError(w, core.ErrInvalidBudget)
		return
	}

	if err := s.svc.SetAnnualBudget(r.Context(), budget); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Totals())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Totals())
}
