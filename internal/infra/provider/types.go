package provider

import (
	"time"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

// expiryFormat is the provider's ISO 8601 UTC timestamp layout,
// e.g. 2013-06-04T00:00:00.000Z.
const expiryFormat = "2006-01-02T15:04:05.000Z"

// Optional string fields use omitempty so that blank values are omitted from
// the outbound request rather than sent as empty strings; callers trim input
// before assignment.

type getDataRequest struct {
	TxnID         string `json:"txnId"`
	UserIPAddress string `json:"userIpAddress,omitempty"`
}

type cancelRequest struct {
	TxnID   string `json:"txnId"`
	Context string `json:"context,omitempty"`
}

type pairingRequest struct {
	UserID            string         `json:"userId"`
	Language          string         `json:"language,omitempty"`
	Context           string         `json:"context,omitempty"`
	DeviceConstraints map[string]any `json:"deviceConstraints,omitempty"`
	Expiry            string         `json:"expiry"`
	VerifyDevice      bool           `json:"verifyDevice,omitempty"`
	NotificationType  string         `json:"notificationType,omitempty"`
	NotificationURL   string         `json:"notificationUrl,omitempty"`
}

type generateQuickCodeRequest struct {
	UserID  string `json:"userId,omitempty"`
	Context string `json:"context,omitempty"`
}

type phoneEntry struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

type addUserRequest struct {
	UserID string       `json:"userId"`
	Phones []phoneEntry `json:"phones"`
}

type updateUserRequest struct {
	UserID      string       `json:"userId"`
	AllowCreate *bool        `json:"allowCreate,omitempty"`
	Phones      []phoneEntry `json:"phones"`
}

type userRequest struct {
	UserID string `json:"userId"`
}

type deviceRequest struct {
	UserID   string `json:"userId,omitempty"`
	DeviceID string `json:"deviceId,omitempty"`
}

type addDeviceRequest struct {
	UserID         string `json:"userId"`
	DeviceID       string `json:"deviceId"`
	VerifiedDevice *bool  `json:"verifiedDevice,omitempty"`
}

type baseResponse struct {
	Error            string   `json:"error,omitempty"`
	ErrorDescription string   `json:"errorDescription,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// TxnResponse is the minimal initiation/acknowledgement response: the
// provider-issued transaction identifier.
type TxnResponse struct {
	baseResponse
	TxnID string `json:"txnId"`
}

// PairInitiationResponse carries the transaction identifier, the
// human-presentable pairing code, and (notificationChannel mode only) the
// long-poll channel handle.
type PairInitiationResponse struct {
	TxnResponse
	PairCode           string `json:"pairCode"`
	NotificationHandle string `json:"notificationHandle,omitempty"`
}

// RetrievalResponse is the generic data-retrieval result: the transaction's
// provider-side status plus the operation payload, if any.
type RetrievalResponse struct {
	baseResponse
	TxnID   string         `json:"txnId,omitempty"`
	Status  string         `json:"status,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Pending reports whether the provider has not yet produced a result for
// the transaction.
func (r *RetrievalResponse) Pending() bool {
	return r.Status == "" || r.Status == "pending"
}

// ToDomain maps the wire response onto the locally observed lifecycle.
func (r *RetrievalResponse) ToDomain() domain.RetrievalResult {
	out := domain.RetrievalResult{
		TxnID:   r.TxnID,
		State:   domain.ParseTransactionState(r.Status),
		Payload: r.Payload,
	}
	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, domain.Warning(w))
	}
	return out
}

type GetDeviceIDResponse struct {
	baseResponse
	DeviceInfo *deviceInfo `json:"deviceInfo,omitempty"`
}

// Device returns the device record in domain form, or nil when the provider
// sent none.
func (r *GetDeviceIDResponse) Device() *domain.DeviceInfo {
	return r.DeviceInfo.toDomain()
}

type deviceInfo struct {
	DeviceID string `json:"deviceId"`
	Category string `json:"category,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

func (d *deviceInfo) toDomain() *domain.DeviceInfo {
	if d == nil {
		return nil
	}
	return &domain.DeviceInfo{
		DeviceID: d.DeviceID,
		Category: d.Category,
		Verified: d.Verified,
	}
}

type VerifyQuickCodeResponse struct {
	baseResponse
	VerifiedQuickCode bool `json:"verifiedQuickCode"`
}

type GetUserResponse struct {
	baseResponse
	UserID string       `json:"userId"`
	Phones []phoneEntry `json:"phones,omitempty"`
}

func (r *GetUserResponse) PhoneList() []domain.Phone {
	out := make([]domain.Phone, 0, len(r.Phones))
	for _, p := range r.Phones {
		out = append(out, domain.Phone{Name: p.Name, Number: p.Number})
	}
	return out
}

type GetDevicesResponse struct {
	baseResponse
	Devices []deviceInfo `json:"devices,omitempty"`
}

func (r *GetDevicesResponse) DeviceList() []domain.DeviceInfo {
	out := make([]domain.DeviceInfo, 0, len(r.Devices))
	for _, d := range r.Devices {
		out = append(out, domain.DeviceInfo{DeviceID: d.DeviceID, Category: d.Category, Verified: d.Verified})
	}
	return out
}

func formatExpiry(t time.Time) string {
	return t.UTC().Format(expiryFormat)
}

func phoneEntries(phones []domain.Phone) []phoneEntry {
	out := make([]phoneEntry, 0, len(phones))
	for _, p := range phones {
		out = append(out, phoneEntry{Name: p.Name, Number: p.Number})
	}
	return out
}
