package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

// AuditEmitter records operational events into the audit journal. With no
// repository configured (no-db mode) every emit is a no-op; a failing
// repository is logged and swallowed, since auditing is observational and
// must never fail the operation that produced the event.
type AuditEmitter struct {
	Repo  AuditEventRepository
	Clock Clock
}

func NewAuditEmitter(repo AuditEventRepository, clock Clock) *AuditEmitter {
	return &AuditEmitter{Repo: repo, Clock: clock}
}

func (e *AuditEmitter) emit(ctx context.Context, event domain.AuditEvent) {
	if e == nil || e.Repo == nil {
		return
	}
	if event.EventType == "" || event.Result == "" {
		log.Warn().Str("component", "audit").Msg("dropping audit event with missing fields")
		return
	}
	if event.Payload == nil {
		event.Payload = map[string]any{}
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = e.now()
	}
	if _, err := e.Repo.Append(ctx, event); err != nil {
		log.Warn().Err(err).Str("component", "audit").
			Str("event_type", string(event.EventType)).
			Msg("audit append failed")
	}
}

func (e *AuditEmitter) now() time.Time {
	if e.Clock != nil {
		return e.Clock.Now()
	}
	return time.Now()
}

func resultOf(err error) (domain.AuditResult, string) {
	if err == nil {
		return domain.AuditResultSuccess, ""
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return domain.AuditResultFailure, perr.Code
	}
	return domain.AuditResultFailure, "error"
}

func (e *AuditEmitter) PairingStarted(ctx context.Context, userID, txnID string, mode domain.NotificationMode, err error) {
	result, code := resultOf(err)
	e.emit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventPairingStarted,
		TxnID:     txnID,
		UserID:    userID,
		Payload:   map[string]any{"notification_mode": string(mode)},
		Result:    result,
		ErrorCode: code,
	})
}

func (e *AuditEmitter) TransactionRetrieved(ctx context.Context, txnID string, kind domain.TransactionKind, state domain.TransactionState, err error) {
	result, code := resultOf(err)
	e.emit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventTransactionRetrieved,
		TxnID:     txnID,
		Payload:   map[string]any{"kind": string(kind), "state": string(state)},
		Result:    result,
		ErrorCode: code,
	})
}

func (e *AuditEmitter) TransactionCanceled(ctx context.Context, txnID string, err error) {
	result, code := resultOf(err)
	e.emit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventTransactionCanceled,
		TxnID:     txnID,
		Result:    result,
		ErrorCode: code,
	})
}

func (e *AuditEmitter) PairingNotified(ctx context.Context, notification domain.PairingNotification) {
	e.emit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventPairingNotified,
		TxnID:     notification.TxnID,
		Payload:   map[string]any{"status": notification.Status},
		Result:    domain.AuditResultSuccess,
	})
}

func (e *AuditEmitter) AssertionVerified(ctx context.Context, certURL string, outcome domain.VerificationOutcome, err error) {
	result, code := resultOf(err)
	if err == nil && outcome != domain.OutcomeVerified {
		result = domain.AuditResultFailure
		code = string(outcome)
	}
	e.emit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventAssertionVerified,
		Payload:   map[string]any{"cert_url": certURL, "outcome": string(outcome)},
		Result:    result,
		ErrorCode: code,
	})
}
