package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

func selfSignedRSA(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key, selfSignedCert(t, &key.PublicKey, key)
}

func selfSignedCert(t *testing.T, pub, priv any) []byte {
	t.Helper()
	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "assertion signer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, pub, priv)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func signedToken(t *testing.T, key *rsa.PrivateKey, alg, certURL string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(
		`{"alg":"` + alg + `","x5u":"` + certURL + `"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"alice"}`))
	signingInput := header + "." + payload
	sig, err := jwt.GetSigningMethod(alg).Sign(signingInput, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func TestParseCompact(t *testing.T) {
	key, _ := selfSignedRSA(t)
	token := signedToken(t, key, "RS256", "https://certs.example/rp.pem")

	assertion, err := ParseCompact(token)
	if err != nil {
		t.Fatalf("ParseCompact: %v", err)
	}
	if assertion.Algorithm != "RS256" {
		t.Fatalf("alg = %q", assertion.Algorithm)
	}
	if assertion.CertificateURL != "https://certs.example/rp.pem" {
		t.Fatalf("x5u = %q", assertion.CertificateURL)
	}
	if string(assertion.Payload) != `{"sub":"alice"}` {
		t.Fatalf("payload = %q", assertion.Payload)
	}
}

func TestParseCompactMalformed(t *testing.T) {
	cases := map[string]string{
		"two segments":   "aGVhZGVy.cGF5bG9hZA",
		"four segments":  "a.b.c.d",
		"bad base64":     "!!!.cGF5bG9hZA.c2ln",
		"header not map": base64.RawURLEncoding.EncodeToString([]byte(`[]`)) + ".cGF5bG9hZA.c2ln",
		"missing x5u":    base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256"}`)) + ".cGF5bG9hZA.c2ln",
		"missing alg":    base64.RawURLEncoding.EncodeToString([]byte(`{"x5u":"https://c"}`)) + ".cGF5bG9hZA.c2ln",
	}
	for name, token := range cases {
		if _, err := ParseCompact(token); !errors.Is(err, domain.ErrMalformedAssertion) {
			t.Errorf("%s: error = %v, want ErrMalformedAssertion", name, err)
		}
	}
}

func TestVerifyAssertionOutcomes(t *testing.T) {
	key, certPEM := selfSignedRSA(t)

	t.Run("verified", func(t *testing.T) {
		assertion, err := ParseCompact(signedToken(t, key, "RS256", "https://c"))
		if err != nil {
			t.Fatalf("ParseCompact: %v", err)
		}
		if got := VerifyAssertion(certPEM, assertion); got != domain.OutcomeVerified {
			t.Fatalf("outcome = %q", got)
		}
	})

	t.Run("signature mismatch", func(t *testing.T) {
		other, _ := selfSignedRSA(t)
		assertion, err := ParseCompact(signedToken(t, other, "RS256", "https://c"))
		if err != nil {
			t.Fatalf("ParseCompact: %v", err)
		}
		if got := VerifyAssertion(certPEM, assertion); got != domain.OutcomeSignatureMismatch {
			t.Fatalf("outcome = %q", got)
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		assertion, err := ParseCompact(signedToken(t, key, "RS256", "https://c"))
		if err != nil {
			t.Fatalf("ParseCompact: %v", err)
		}
		assertion.SigningInput = assertion.SigningInput + "x"
		if got := VerifyAssertion(certPEM, assertion); got != domain.OutcomeSignatureMismatch {
			t.Fatalf("outcome = %q", got)
		}
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		assertion := &domain.SignedAssertion{Algorithm: "none", SigningInput: "a.b"}
		if got := VerifyAssertion(certPEM, assertion); got != domain.OutcomeSignatureMismatch {
			t.Fatalf("outcome = %q", got)
		}
	})

	t.Run("not a certificate", func(t *testing.T) {
		assertion, err := ParseCompact(signedToken(t, key, "RS256", "https://c"))
		if err != nil {
			t.Fatalf("ParseCompact: %v", err)
		}
		if got := VerifyAssertion([]byte("plain text, not PEM"), assertion); got != domain.OutcomeCertNotAPublicKeyCert {
			t.Fatalf("outcome = %q", got)
		}
	})

	t.Run("public key block instead of certificate", func(t *testing.T) {
		der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			t.Fatalf("marshal key: %v", err)
		}
		keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
		assertion, err := ParseCompact(signedToken(t, key, "RS256", "https://c"))
		if err != nil {
			t.Fatalf("ParseCompact: %v", err)
		}
		if got := VerifyAssertion(keyPEM, assertion); got != domain.OutcomeCertNotAPublicKeyCert {
			t.Fatalf("outcome = %q", got)
		}
	})

	t.Run("non-RSA certificate key", func(t *testing.T) {
		ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			t.Fatalf("generate ec key: %v", err)
		}
		ecCertPEM := selfSignedCert(t, &ecKey.PublicKey, ecKey)
		assertion, err := ParseCompact(signedToken(t, key, "RS256", "https://c"))
		if err != nil {
			t.Fatalf("ParseCompact: %v", err)
		}
		if got := VerifyAssertion(ecCertPEM, assertion); got != domain.OutcomeKeyTypeUnsupported {
			t.Fatalf("outcome = %q", got)
		}
	})
}
