package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event names carried on the wire.
const (
	EventInvoiceReceived = "invoice_received"
	EventInvoiceApproved = "invoice_approved"
	EventInvoicePaid     = "invoice_paid"
	EventInvoiceRejected = "invoice_rejected"
	EventAccrualAdded    = "accrual_added"
	EventAccrualRemoved  = "accrual_removed"
	EventBudgetUpdated   = "budget_updated"
	EventLedgerReset     = "ledger_reset"
)

// LedgerEventMessage notifies the mirror worker that the ledger changed.
// It carries only the event kind and the affected record id; the worker
// reads the authoritative state from the snapshot store.
type LedgerEventMessage struct {
	Event     string    `json:"event"`
	RecordID  string    `json:"recordId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event message stamped with the current time.
func NewLedgerEventMessage(event, recordID string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Event:     event,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
