package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

// VerifyAssertion is the single verification entry point: parse the compact
// token, check the certificate source against policy, fetch the certificate,
// verify the signature. A malformed token is a typed error rather than an
// outcome; every other path produces exactly one of the closed outcome
// values.
type VerifyAssertion struct {
	Codec   AssertionCodec
	Policy  CertificatePolicy
	Fetcher CertificateSource
	Audit   *AuditEmitter
}

func (v *VerifyAssertion) Execute(ctx context.Context, token string) (domain.VerificationOutcome, error) {
	if v == nil || v.Codec == nil || v.Fetcher == nil {
		return "", errors.New("verifier is not configured")
	}

	assertion, err := v.Codec.ParseCompact(token)
	if err != nil {
		return "", err
	}

	if v.Policy != nil {
		allowed, err := v.Policy.Allow(ctx, assertion.CertificateURL)
		if err != nil {
			return "", fmt.Errorf("evaluate certificate policy: %w", err)
		}
		if !allowed {
			err := fmt.Errorf("%w: %s", domain.ErrCertSourceNotAllowed, assertion.CertificateURL)
			v.Audit.AssertionVerified(ctx, assertion.CertificateURL, "", err)
			return "", err
		}
	}

	pemBytes, err := v.Fetcher.Fetch(ctx, assertion.CertificateURL)
	if err != nil {
		// The verifier is never consulted when the certificate could not
		// be obtained; the failure is itself an outcome.
		v.Audit.AssertionVerified(ctx, assertion.CertificateURL, domain.OutcomeCertificateFetchFail, nil)
		return domain.OutcomeCertificateFetchFail, nil
	}

	outcome := v.Codec.Verify(pemBytes, assertion)
	v.Audit.AssertionVerified(ctx, assertion.CertificateURL, outcome, nil)
	return outcome, nil
}
