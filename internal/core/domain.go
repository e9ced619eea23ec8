package core

import (
	"errors"
	"strings"
	"time"
)

// Invoice lifecycle states. A record starts as a candidate (not yet in any
// collection), is admitted into pending, and ends in paid or rejected.
const (
	StatePending  InvoiceState = "pending"
	StateApproved InvoiceState = "approved"
	StatePaid     InvoiceState = "paid"
	StateRejected InvoiceState = "rejected"
)

// ManualProvenance marks records entered by hand instead of extracted from
// document text.
const ManualProvenance = "Manual entry"

// DefaultAccrualDescription is used when an accrual is created without one.
const DefaultAccrualDescription = "Unbilled WIP"

// MaxProvenanceRunes bounds the excerpt of source text kept on a record.
const MaxProvenanceRunes = 500

type (
	InvoiceState string

	// Invoice is a single payable moving through the review pipeline.
	// ID and Provenance are immutable after creation; Stamps is append-only,
	// one entry per lifecycle state entered.
	Invoice struct {
		ID         string                     `json:"id"`
		Vendor     string                     `json:"vendor"`
		Date       Date                       `json:"date"`
		Amount     Money                      `json:"amount"`
		Stamps     map[InvoiceState]time.Time `json:"stamps,omitempty"`
		Provenance string                     `json:"provenance,omitempty"`
	}

	// Accrual is an estimate of unbilled work in progress. It lives outside
	// the invoice pipeline and is removed by explicit user acknowledgment.
	Accrual struct {
		ID          string    `json:"id"`
		Vendor      string    `json:"vendor"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		CreatedAt   time.Time `json:"createdAt"`
	}
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyVendor   = errors.New("empty vendor")
	ErrInvalidBudget = errors.New("budget must be positive")
	ErrTerminalState = errors.New("terminal state")
)

// IsValid returns true for the four lifecycle states.
func (s InvoiceState) IsValid() bool {
	switch s {
	case StatePending, StateApproved, StatePaid, StateRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is legal from s.
func (s InvoiceState) Terminal() bool {
	return s == StatePaid || s == StateRejected
}

func (i Invoice) Validate() error {
	if strings.TrimSpace(i.Vendor) == "" {
		return ErrEmptyVendor
	}
	// Zero is the "could not determine amount" sentinel; negatives never are.
	if i.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// StampedAt returns the time the invoice entered the given state.
func (i Invoice) StampedAt(s InvoiceState) (time.Time, bool) {
	t, ok := i.Stamps[s]
	return t, ok
}

func (i Invoice) clone() Invoice {
	if i.Stamps != nil {
		stamps := make(map[InvoiceState]time.Time, len(i.Stamps))
		for k, v := range i.Stamps {
			stamps[k] = v
		}
		i.Stamps = stamps
	}
	return i
}

func (a Accrual) Validate() error {
	if strings.TrimSpace(a.Vendor) == "" {
		return ErrEmptyVendor
	}
	if a.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// TruncateProvenance bounds an excerpt at MaxProvenanceRunes without
// splitting a multi-byte character.
func TruncateProvenance(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxProvenanceRunes {
		return text
	}
	return string(runes[:MaxProvenanceRunes])
}
