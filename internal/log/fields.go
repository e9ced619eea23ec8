package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldInvoiceID   = "invoice_id"
	FieldAccrualID   = "accrual_id"
	FieldVendor      = "vendor"
	FieldAmountCents = "amount_cents"
	FieldState       = "state"
	FieldFromState   = "from_state"
	FieldEvent       = "event"
	FieldBackend     = "backend"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentExtract = "extract"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpAdmit    = "admit"
	OpApprove  = "approve"
	OpPay      = "pay"
	OpReject   = "reject"
	OpAccrue   = "accrue"
	OpRemove   = "remove"
	OpBudget   = "budget"
	OpReset    = "reset"
	OpExtract  = "extract"
	OpLoad     = "load"
	OpSave     = "save"
	OpMirror   = "mirror"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
