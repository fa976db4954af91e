package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

type capturingAuditRepo struct {
	events []domain.AuditEvent
	err    error
}

func (r *capturingAuditRepo) Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	if r.err != nil {
		return domain.AuditEvent{}, r.err
	}
	r.events = append(r.events, event)
	return event, nil
}

func TestAuditEmitterStampsCreatedAt(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	repo := &capturingAuditRepo{}
	emitter := NewAuditEmitter(repo, ClockFunc(func() time.Time { return now }))

	emitter.PairingStarted(context.Background(), "alice", "t-1", domain.NotifyNone, nil)

	if len(repo.events) != 1 {
		t.Fatalf("events = %d", len(repo.events))
	}
	event := repo.events[0]
	if event.EventType != domain.AuditEventPairingStarted {
		t.Fatalf("event type = %q", event.EventType)
	}
	if !event.CreatedAt.Equal(now) {
		t.Fatalf("createdAt = %v", event.CreatedAt)
	}
	if event.Result != domain.AuditResultSuccess {
		t.Fatalf("result = %q", event.Result)
	}
}

func TestAuditEmitterRecordsProviderErrorCode(t *testing.T) {
	repo := &capturingAuditRepo{}
	emitter := NewAuditEmitter(repo, nil)

	err := &domain.ProviderError{Code: domain.ProviderErrUnknownTxn}
	emitter.TransactionRetrieved(context.Background(), "t-2", domain.TxnKindPairing, domain.TxnStateUnknown, err)

	event := repo.events[0]
	if event.Result != domain.AuditResultFailure {
		t.Fatalf("result = %q", event.Result)
	}
	if event.ErrorCode != domain.ProviderErrUnknownTxn {
		t.Fatalf("errorCode = %q", event.ErrorCode)
	}
}

func TestAuditEmitterFailedOutcomeIsFailure(t *testing.T) {
	repo := &capturingAuditRepo{}
	emitter := NewAuditEmitter(repo, nil)

	emitter.AssertionVerified(context.Background(), "https://certs.example/rp.pem", domain.OutcomeSignatureMismatch, nil)

	event := repo.events[0]
	if event.Result != domain.AuditResultFailure {
		t.Fatalf("result = %q", event.Result)
	}
	if event.ErrorCode != string(domain.OutcomeSignatureMismatch) {
		t.Fatalf("errorCode = %q", event.ErrorCode)
	}
}

func TestAuditEmitterToleratesFailuresAndNilRepo(t *testing.T) {
	emitter := NewAuditEmitter(&capturingAuditRepo{err: errors.New("db down")}, nil)
	emitter.TransactionCanceled(context.Background(), "t-3", nil)

	var disabled *AuditEmitter
	disabled.TransactionCanceled(context.Background(), "t-3", nil)

	none := NewAuditEmitter(nil, nil)
	none.TransactionCanceled(context.Background(), "t-3", nil)
}
