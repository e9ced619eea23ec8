// Package http exposes the ledger to its presentation collaborator as a
// JSON API. Handlers read aggregate queries and invoke transition
// operations; they never touch the ledger collections directly.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ebilling/internal/core"
	applog "ebilling/internal/log"
	"ebilling/internal/services"
)

type Server struct {
	http.Server
	svc *services.LedgerService
}

func NewServer(addr string, svc *services.LedgerService) *Server {
	s := &Server{svc: svc}
	s.Addr = addr
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/extract", s.handleExtract)

	mux.HandleFunc("GET /api/invoices", s.handleListInvoices)
	mux.HandleFunc("POST /api/invoices", s.handleAddInvoice)
	mux.HandleFunc("POST /api/invoices/{id}/approve", s.handleApprove)
	mux.HandleFunc("POST /api/invoices/{id}/pay", s.handleMarkPaid)
	mux.HandleFunc("POST /api/invoices/{id}/reject", s.handleReject)

	mux.HandleFunc("GET /api/accruals", s.handleListAccruals)
	mux.HandleFunc("POST /api/accruals", s.handleAddAccrual)
	mux.HandleFunc("DELETE /api/accruals/{id}", s.handleRemoveAccrual)

	mux.HandleFunc("PUT /api/budget", s.handleSetBudget)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return logRequests(mux)
}

// logRequests records method, path, status, and duration for every request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("Request handled",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rec.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps core sentinel errors onto HTTP statuses: not-found to
// 404, invalid input to 400, anything else (snapshot IO included) to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateID),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyVendor),
		errors.Is(err, core.ErrInvalidBudget),
		errors.Is(err, core.ErrTerminalState):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
