package domain

import "time"

type AuditEventType string

const (
	AuditEventTransactionInitiated AuditEventType = "transaction_initiated"
	AuditEventTransactionRetrieved AuditEventType = "transaction_retrieved"
	AuditEventTransactionCanceled  AuditEventType = "transaction_canceled"
	AuditEventPairingStarted       AuditEventType = "pairing_started"
	AuditEventPairingNotified      AuditEventType = "pairing_notified"
	AuditEventAssertionVerified    AuditEventType = "assertion_verified"
)

type AuditResult string

const (
	AuditResultSuccess AuditResult = "success"
	AuditResultFailure AuditResult = "failure"
)

type AuditEvent struct {
	ID        string
	EventType AuditEventType
	TxnID     string
	UserID    string
	Payload   map[string]any
	Result    AuditResult
	ErrorCode string
	CreatedAt time.Time
}
