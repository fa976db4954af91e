package crypto

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

// VerifyAssertion checks an assertion's signature against the public key of
// a PEM-encoded certificate. It always returns one of the closed outcome
// values; the branch order mirrors the order the checks can fail in:
// certificate decoding, key type, then the signature itself.
func VerifyAssertion(pemBytes []byte, assertion *domain.SignedAssertion) domain.VerificationOutcome {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return domain.OutcomeCertNotAPublicKeyCert
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return domain.OutcomeCertNotAPublicKeyCert
	}

	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return domain.OutcomeKeyTypeUnsupported
	}

	// Only the RSASSA-PKCS1-v1_5 family is accepted; an unknown or non-RSA
	// alg header fails the same way a bad signature does.
	method, ok := jwt.GetSigningMethod(assertion.Algorithm).(*jwt.SigningMethodRSA)
	if !ok {
		return domain.OutcomeSignatureMismatch
	}
	if err := method.Verify(assertion.SigningInput, assertion.Signature, key); err != nil {
		return domain.OutcomeSignatureMismatch
	}
	return domain.OutcomeVerified
}
