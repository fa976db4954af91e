package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

const defaultPairingExpiry = 30 * time.Minute

// Pairing orchestrates the pairing lifecycle against the provider: local
// validation, initiation, polling for the result, and advisory cancellation.
// The provider remains the source of truth for outcomes; the journal only
// records what was observed.
type Pairing struct {
	Gateway PairingGateway
	Journal TransactionJournal
	Audit   *AuditEmitter
	Clock   Clock
	// DefaultExpiry applies when the request carries no expiry; zero means
	// 30 minutes.
	DefaultExpiry time.Duration
}

// Start validates the request and initiates a pairing. Validation failures
// surface before any network call is made.
func (p *Pairing) Start(ctx context.Context, req domain.PairingRequest) (domain.PairingHandle, error) {
	if p == nil || p.Gateway == nil {
		return domain.PairingHandle{}, errors.New("pairing gateway is not configured")
	}
	if err := req.Validate(); err != nil {
		return domain.PairingHandle{}, err
	}
	if req.Expiry.IsZero() {
		expiry := p.DefaultExpiry
		if expiry <= 0 {
			expiry = defaultPairingExpiry
		}
		req.Expiry = p.now().Add(expiry)
	}

	handle, err := p.Gateway.StartPairing(ctx, req)
	p.Audit.PairingStarted(ctx, req.UserID, handle.TxnID, req.NotificationMode, err)
	if err != nil {
		return domain.PairingHandle{}, err
	}

	expiresAt := handle.ExpiresAt
	p.record(ctx, domain.Transaction{
		TxnID:     handle.TxnID,
		Kind:      domain.TxnKindPairing,
		State:     domain.TxnStateInitiated,
		CreatedAt: p.now(),
		ExpiresAt: &expiresAt,
	})
	return handle, nil
}

// Result polls the provider for the pairing outcome and records terminal
// states into the journal.
func (p *Pairing) Result(ctx context.Context, txnID string) (domain.RetrievalResult, error) {
	if p == nil || p.Gateway == nil {
		return domain.RetrievalResult{}, errors.New("pairing gateway is not configured")
	}
	result, err := p.Gateway.PairingResult(ctx, txnID)
	p.Audit.TransactionRetrieved(ctx, txnID, domain.TxnKindPairing, result.State, err)
	if err != nil {
		return domain.RetrievalResult{}, err
	}
	if result.State == domain.TxnStateCompleted || result.State == domain.TxnStateFailed {
		p.record(ctx, domain.Transaction{
			TxnID: txnID,
			Kind:  domain.TxnKindPairing,
			State: result.State,
		})
	}
	return result, nil
}

// Cancel asks the provider to abandon the transaction. The call is advisory:
// a pairing already completed on the device side stays completed.
func (p *Pairing) Cancel(ctx context.Context, txnID, reason string) error {
	if p == nil || p.Gateway == nil {
		return errors.New("pairing gateway is not configured")
	}
	err := p.Gateway.Cancel(ctx, txnID, reason)
	p.Audit.TransactionCanceled(ctx, txnID, err)
	if err != nil {
		return err
	}
	p.record(ctx, domain.Transaction{
		TxnID: txnID,
		Kind:  domain.TxnKindPairing,
		State: domain.TxnStateFailed,
	})
	return nil
}

// Notify records an inbound httpPost completion notification.
func (p *Pairing) Notify(ctx context.Context, notification domain.PairingNotification) error {
	if notification.TxnID == "" {
		return fmt.Errorf("%w: txnId is required", domain.ErrValidation)
	}
	state := domain.ParseTransactionState(notification.Status)
	p.Audit.PairingNotified(ctx, notification)
	p.record(ctx, domain.Transaction{
		TxnID: notification.TxnID,
		Kind:  domain.TxnKindPairing,
		State: state,
	})
	return nil
}

func (p *Pairing) record(ctx context.Context, txn domain.Transaction) {
	if p.Journal == nil {
		return
	}
	if err := p.Journal.Record(ctx, txn); err != nil {
		log.Warn().Err(err).Str("component", "pairing").
			Str("txn_id", txn.TxnID).
			Msg("transaction journal write failed")
	}
}

func (p *Pairing) now() time.Time {
	if p.Clock != nil {
		return p.Clock.Now()
	}
	return time.Now()
}
