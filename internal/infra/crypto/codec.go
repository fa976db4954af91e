package crypto

import "github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"

// Codec bundles the package functions behind the orchestrator's interface.
type Codec struct{}

func (Codec) ParseCompact(token string) (*domain.SignedAssertion, error) {
	return ParseCompact(token)
}

func (Codec) Verify(pemBytes []byte, assertion *domain.SignedAssertion) domain.VerificationOutcome {
	return VerifyAssertion(pemBytes, assertion)
}
