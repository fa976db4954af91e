package usecase

import (
	"context"
	"time"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// PairingGateway is the provider-facing contract the pairing orchestrator
// programs against.
type PairingGateway interface {
	StartPairing(ctx context.Context, req domain.PairingRequest) (domain.PairingHandle, error)
	PairingResult(ctx context.Context, txnID string) (domain.RetrievalResult, error)
	Cancel(ctx context.Context, txnID, reason string) error
}

// CertificateSource yields the PEM bytes published at a URL.
type CertificateSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CertificatePolicy decides whether a certificate URL may be fetched.
type CertificatePolicy interface {
	Allow(ctx context.Context, rawURL string) (bool, error)
}

// AssertionCodec parses compact tokens and checks their signatures.
type AssertionCodec interface {
	ParseCompact(token string) (*domain.SignedAssertion, error)
	Verify(pemBytes []byte, assertion *domain.SignedAssertion) domain.VerificationOutcome
}

type AuditEventRepository interface {
	Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error)
}

// TransactionJournal records locally observed transaction lifecycle. It is
// observational: journal failures never fail the operation that produced
// the observation.
type TransactionJournal interface {
	Record(ctx context.Context, txn domain.Transaction) error
}
