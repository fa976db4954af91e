package domain

// SignedAssertion is the parsed form of a compact signed token (JWS).
// SigningInput is the dot-joined header and payload segments the signature
// covers. The struct is immutable once parsed.
type SignedAssertion struct {
	CertificateURL string
	Algorithm      string
	SigningInput   string
	Payload        []byte
	Signature      []byte
}

// VerificationOutcome is a closed enumeration of trust decisions. The string
// values are the wire tags surfaced to callers; they must be treated as an
// exhaustive set, not free text.
type VerificationOutcome string

const (
	OutcomeVerified              VerificationOutcome = "jwt_verified"
	OutcomeSignatureMismatch     VerificationOutcome = "jwt_verify_fail"
	OutcomeKeyTypeUnsupported    VerificationOutcome = "jwt_pub_key_not_rsa"
	OutcomeCertNotAPublicKeyCert VerificationOutcome = "jwt_pem_not_cert"
	OutcomeCertificateFetchFail  VerificationOutcome = "jwt_pem_download_fail"
)
