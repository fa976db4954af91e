package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

type fakeCodec struct {
	assertion *domain.SignedAssertion
	parseErr  error
	outcome   domain.VerificationOutcome
	verified  int
}

func (f *fakeCodec) ParseCompact(token string) (*domain.SignedAssertion, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.assertion, nil
}

func (f *fakeCodec) Verify(pemBytes []byte, assertion *domain.SignedAssertion) domain.VerificationOutcome {
	f.verified++
	return f.outcome
}

type fakeSource struct {
	pem   []byte
	err   error
	calls int
}

func (f *fakeSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return f.pem, f.err
}

type policyFunc func(ctx context.Context, rawURL string) (bool, error)

func (f policyFunc) Allow(ctx context.Context, rawURL string) (bool, error) { return f(ctx, rawURL) }

func TestVerifyAssertionHappyPath(t *testing.T) {
	codec := &fakeCodec{
		assertion: &domain.SignedAssertion{CertificateURL: "https://certs.example/rp.pem"},
		outcome:   domain.OutcomeVerified,
	}
	v := &VerifyAssertion{
		Codec:   codec,
		Fetcher: &fakeSource{pem: []byte("pem")},
	}
	outcome, err := v.Execute(context.Background(), "h.p.s")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome != domain.OutcomeVerified {
		t.Fatalf("outcome = %q", outcome)
	}
}

func TestVerifyAssertionMalformedTokenIsTyped(t *testing.T) {
	codec := &fakeCodec{parseErr: domain.ErrMalformedAssertion}
	source := &fakeSource{}
	v := &VerifyAssertion{Codec: codec, Fetcher: source}

	_, err := v.Execute(context.Background(), "garbage")
	if !errors.Is(err, domain.ErrMalformedAssertion) {
		t.Fatalf("error = %v, want ErrMalformedAssertion", err)
	}
	if source.calls != 0 {
		t.Fatal("fetch was attempted for a malformed token")
	}
}

func TestVerifyAssertionFetchFailureSkipsVerifier(t *testing.T) {
	codec := &fakeCodec{
		assertion: &domain.SignedAssertion{CertificateURL: "https://certs.example/rp.pem"},
		outcome:   domain.OutcomeVerified,
	}
	v := &VerifyAssertion{
		Codec:   codec,
		Fetcher: &fakeSource{err: domain.ErrCertificateFetch},
	}
	outcome, err := v.Execute(context.Background(), "h.p.s")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome != domain.OutcomeCertificateFetchFail {
		t.Fatalf("outcome = %q", outcome)
	}
	if codec.verified != 0 {
		t.Fatal("verifier was invoked despite fetch failure")
	}
}

func TestVerifyAssertionPolicyDenialBeforeFetch(t *testing.T) {
	codec := &fakeCodec{
		assertion: &domain.SignedAssertion{CertificateURL: "https://evil.example/rp.pem"},
	}
	source := &fakeSource{pem: []byte("pem")}
	v := &VerifyAssertion{
		Codec:   codec,
		Fetcher: source,
		Policy: policyFunc(func(ctx context.Context, rawURL string) (bool, error) {
			return false, nil
		}),
	}
	_, err := v.Execute(context.Background(), "h.p.s")
	if !errors.Is(err, domain.ErrCertSourceNotAllowed) {
		t.Fatalf("error = %v, want ErrCertSourceNotAllowed", err)
	}
	if source.calls != 0 {
		t.Fatal("certificate was fetched despite policy denial")
	}
}

func TestVerifyAssertionOutcomePassThrough(t *testing.T) {
	for _, outcome := range []domain.VerificationOutcome{
		domain.OutcomeSignatureMismatch,
		domain.OutcomeKeyTypeUnsupported,
		domain.OutcomeCertNotAPublicKeyCert,
	} {
		codec := &fakeCodec{
			assertion: &domain.SignedAssertion{CertificateURL: "https://certs.example/rp.pem"},
			outcome:   outcome,
		}
		v := &VerifyAssertion{Codec: codec, Fetcher: &fakeSource{pem: []byte("pem")}}
		got, err := v.Execute(context.Background(), "h.p.s")
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if got != outcome {
			t.Fatalf("outcome = %q, want %q", got, outcome)
		}
	}
}
