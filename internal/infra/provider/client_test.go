package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL), srv
}

func TestPairDeviceOmitsBlankOptionals(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/connect/pair" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"txnId": "t-1", "pairCode": "482913"})
	})

	expiry := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	resp, err := client.PairDevice(context.Background(), domain.PairingRequest{
		UserID:   "  alice  ",
		Language: "",
		Expiry:   expiry,
	})
	if err != nil {
		t.Fatalf("PairDevice: %v", err)
	}
	if resp.TxnID != "t-1" || resp.PairCode != "482913" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got["userId"] != "alice" {
		t.Fatalf("userId = %v", got["userId"])
	}
	if got["expiry"] != "2026-08-31T12:00:00.000Z" {
		t.Fatalf("expiry = %v", got["expiry"])
	}
	for _, key := range []string{"language", "context", "notificationType", "notificationUrl", "verifyDevice"} {
		if _, ok := got[key]; ok {
			t.Fatalf("blank optional %q was sent", key)
		}
	}
}

func TestPairDeviceSendsNotificationMode(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"txnId": "t-2", "pairCode": "11", "notificationHandle": "nh-9"})
	})

	resp, err := client.PairDevice(context.Background(), domain.PairingRequest{
		UserID:           "bob",
		Expiry:           time.Now().Add(30 * time.Minute),
		NotificationMode: domain.NotifyHTTPPost,
		NotificationURL:  "https://rp.example/hook",
	})
	if err != nil {
		t.Fatalf("PairDevice: %v", err)
	}
	if got["notificationType"] != "httpPost" {
		t.Fatalf("notificationType = %v", got["notificationType"])
	}
	if got["notificationUrl"] != "https://rp.example/hook" {
		t.Fatalf("notificationUrl = %v", got["notificationUrl"])
	}
	if resp.NotificationHandle != "nh-9" {
		t.Fatalf("notificationHandle = %q", resp.NotificationHandle)
	}
}

func TestErrorEnvelopeWinsOverStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"error":            "unknown_txn",
			"errorDescription": "no such transaction",
		})
	})

	_, err := client.PairDeviceData(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error")
	}
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("error type %T", err)
	}
	if perr.Code != domain.ProviderErrUnknownTxn {
		t.Fatalf("code = %q", perr.Code)
	}
	if !errors.Is(err, domain.ErrUnknownTransaction) {
		t.Fatal("unknown_txn did not match ErrUnknownTransaction")
	}
}

func TestNonSuccessStatusWithoutEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.CancelRequest(context.Background(), "t-3", "")
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("error type %T", err)
	}
	if perr.Code != domain.ProviderErrSystemError || perr.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("unexpected provider error %+v", perr)
	}
}

func TestDeviceInitiatedGetDeviceForwardsClientIP(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"deviceInfo": map[string]any{"deviceId": "d-7", "verified": true},
			"warnings":   []string{"client_ip_mismatch"},
		})
	})

	resp, err := client.DeviceInitiatedGetDevice(context.Background(), "t-4", "203.0.113.9")
	if err != nil {
		t.Fatalf("DeviceInitiatedGetDevice: %v", err)
	}
	if got["userIpAddress"] != "203.0.113.9" {
		t.Fatalf("userIpAddress = %v", got["userIpAddress"])
	}
	dev := resp.Device()
	if dev == nil || dev.DeviceID != "d-7" || !dev.Verified {
		t.Fatalf("device = %+v", dev)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0] != "client_ip_mismatch" {
		t.Fatalf("warnings = %v", resp.Warnings)
	}
}

func TestRetrievalPending(t *testing.T) {
	for _, status := range []string{"", "pending"} {
		r := RetrievalResponse{Status: status}
		if !r.Pending() {
			t.Fatalf("status %q should be pending", status)
		}
	}
	r := RetrievalResponse{Status: "completed"}
	if r.Pending() {
		t.Fatal("completed should not be pending")
	}
}

func TestUpdateUserSendsPhonePairs(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mgmt/users/update" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"txnId": "t-5"})
	})

	allow := true
	_, err := client.UpdateUser(context.Background(), "carol", &allow, []domain.Phone{
		{Name: "mobile", Number: "+15550001111"},
		{Name: "mobile", Number: "+15550002222"},
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	phones, ok := got["phones"].([]any)
	if !ok || len(phones) != 2 {
		t.Fatalf("phones = %v", got["phones"])
	}
	first := phones[0].(map[string]any)
	if first["name"] != "mobile" || first["number"] != "+15550001111" {
		t.Fatalf("first phone = %v", first)
	}
	if got["allowCreate"] != true {
		t.Fatalf("allowCreate = %v", got["allowCreate"])
	}
}

func TestContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.GetUser(ctx, "dave"); err == nil {
		t.Fatal("expected context error")
	}
}
