package domain

import (
	"fmt"
	"time"
)

// TransactionKind identifies the logical operation a provider transaction
// belongs to. Values are validated at the boundary; unrecognized strings are
// rejected rather than forwarded to the provider.
type TransactionKind string

const (
	TxnKindCardRead       TransactionKind = "card_read"
	TxnKindDeviceRead     TransactionKind = "device_read"
	TxnKindQuickCodeSetup TransactionKind = "quickcode_setup"
	TxnKindQuickCodeVerify TransactionKind = "quickcode_verify"
	TxnKindPairing        TransactionKind = "pairing"
	TxnKindCancel         TransactionKind = "cancel"
)

func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case TxnKindCardRead, TxnKindDeviceRead, TxnKindQuickCodeSetup,
		TxnKindQuickCodeVerify, TxnKindPairing, TxnKindCancel:
		return TransactionKind(s), nil
	}
	return "", fmt.Errorf("%w: unrecognized transaction kind %q", ErrValidation, s)
}

// TransactionState is the locally observed lifecycle of a provider
// transaction. The client has no independent knowledge of server-side
// progress: Completed and Failed are only ever set on observation of a
// retrieval response.
type TransactionState string

const (
	TxnStateInitiated TransactionState = "initiated"
	TxnStatePending   TransactionState = "pending"
	TxnStateCompleted TransactionState = "completed"
	TxnStateFailed    TransactionState = "failed"
	TxnStateUnknown   TransactionState = "unknown"
)

// Transaction correlates an initiation call with later retrieval calls.
// TxnID is opaque and provider-issued; it must never be client-generated or
// reused for a different logical operation.
type Transaction struct {
	TxnID     string
	Kind      TransactionKind
	State     TransactionState
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// RetrievalResult is the observed outcome of polling a transaction: the
// provider-reported state plus the operation payload once one exists.
type RetrievalResult struct {
	TxnID    string
	State    TransactionState
	Payload  map[string]any
	Warnings []Warning
}

// ParseTransactionState maps a provider status string onto the local
// lifecycle. An absent status means the provider has not produced a result
// yet; anything unrecognized is Unknown rather than an error, since new
// provider states must not break retrieval.
func ParseTransactionState(s string) TransactionState {
	switch s {
	case "", "pending":
		return TxnStatePending
	case "completed", "success":
		return TxnStateCompleted
	case "failed", "failure":
		return TxnStateFailed
	}
	return TxnStateUnknown
}

// Warning is a non-fatal condition reported by the provider alongside a
// retrieval response, e.g. client_ip_mismatch on device-initiated reads.
type Warning string

const WarningClientIPMismatch Warning = "client_ip_mismatch"
