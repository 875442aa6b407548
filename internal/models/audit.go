package models

import "time"

// AuditEvent is one entry of the local append-only audit trail. The
// trail records what was written to the ledger and when; it is never
// read back into lifecycle decisions.
type AuditEvent struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	DriverID  string    `json:"driver_id"`
	EventType string    `json:"event_type"` // TRIP_STARTED, TRIP_CLOSED
	LedgerRow int       `json:"ledger_row"`
	Detail    string    `json:"detail"` // JSON blob of the written amounts
	CreatedAt time.Time `json:"created_at"`
}

// Audit event types
const (
	EventTripStarted = "TRIP_STARTED"
	EventTripClosed  = "TRIP_CLOSED"
)
