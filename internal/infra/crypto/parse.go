package crypto

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

type assertionHeader struct {
	Algorithm      string `json:"alg"`
	CertificateURL string `json:"x5u"`
}

// ParseCompact splits a compact-serialized signed assertion
// (header.payload.signature, each segment base64url without padding) and
// extracts the header fields needed for verification. Structural problems,
// the wrong segment count, undecodable segments, an unparsable header, or a
// header missing alg or x5u, are domain.ErrMalformedAssertion: the caller
// rejects the request instead of producing a verification outcome.
func ParseCompact(token string) (*domain.SignedAssertion, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", domain.ErrMalformedAssertion, len(parts))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header segment: %v", domain.ErrMalformedAssertion, err)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload segment: %v", domain.ErrMalformedAssertion, err)
	}
	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature segment: %v", domain.ErrMalformedAssertion, err)
	}

	var header assertionHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%w: header is not a JSON object: %v", domain.ErrMalformedAssertion, err)
	}
	if header.Algorithm == "" {
		return nil, fmt.Errorf("%w: header has no alg", domain.ErrMalformedAssertion)
	}
	if header.CertificateURL == "" {
		return nil, fmt.Errorf("%w: header has no x5u", domain.ErrMalformedAssertion)
	}

	return &domain.SignedAssertion{
		CertificateURL: header.CertificateURL,
		Algorithm:      header.Algorithm,
		SigningInput:   parts[0] + "." + parts[1],
		Payload:        payload,
		Signature:      signature,
	}, nil
}
