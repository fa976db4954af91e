package certpolicy

import (
	"context"
	"testing"
)

func TestEmptyAllowListAcceptsEverything(t *testing.T) {
	engine, err := NewEngine(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for _, rawURL := range []string{
		"https://certs.example/rp.pem",
		"http://certs.example/rp.pem",
		"https://anything.example:8443/chain.pem",
	} {
		allowed, err := engine.Allow(context.Background(), rawURL)
		if err != nil {
			t.Fatalf("Allow(%s): %v", rawURL, err)
		}
		if !allowed {
			t.Errorf("Allow(%s) = false, want true", rawURL)
		}
	}
}

func TestAllowListRestrictsHostAndScheme(t *testing.T) {
	engine, err := NewEngine(context.Background(), []string{"certs.example", "pki.example:8443"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	cases := []struct {
		rawURL string
		want   bool
	}{
		{"https://certs.example/rp.pem", true},
		{"https://pki.example:8443/rp.pem", true},
		{"http://certs.example/rp.pem", false},
		{"https://evil.example/rp.pem", false},
		{"https://certs.example.evil.example/rp.pem", false},
		{"://not a url", false},
		{"rp.pem", false},
	}
	for _, tc := range cases {
		allowed, err := engine.Allow(context.Background(), tc.rawURL)
		if err != nil {
			t.Fatalf("Allow(%s): %v", tc.rawURL, err)
		}
		if allowed != tc.want {
			t.Errorf("Allow(%s) = %v, want %v", tc.rawURL, allowed, tc.want)
		}
	}
}

func TestNilEngine(t *testing.T) {
	var engine *Engine
	if _, err := engine.Allow(context.Background(), "https://certs.example/rp.pem"); err == nil {
		t.Fatal("expected error from nil engine")
	}
}
