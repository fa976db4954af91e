package provider

import (
	"context"
	"strings"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

// PairDevice initiates a device pairing. The request must already satisfy
// domain.PairingRequest.Validate; this method only maps parameters onto the
// wire, dropping blank optionals.
func (c *Client) PairDevice(ctx context.Context, req domain.PairingRequest) (*PairInitiationResponse, error) {
	wire := pairingRequest{
		UserID:            strings.TrimSpace(req.UserID),
		Language:          strings.TrimSpace(req.Language),
		Context:           strings.TrimSpace(req.Context),
		DeviceConstraints: req.DeviceConstraints,
		Expiry:            formatExpiry(req.Expiry),
		VerifyDevice:      req.VerifyDevice,
		NotificationURL:   strings.TrimSpace(req.NotificationURL),
	}
	if req.NotificationMode != "" && req.NotificationMode != domain.NotifyNone {
		wire.NotificationType = string(req.NotificationMode)
	}
	var out PairInitiationResponse
	if err := c.post(ctx, "/connect/pair", wire, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PairDeviceData retrieves the result of a pairing transaction.
func (c *Client) PairDeviceData(ctx context.Context, txnID string) (*RetrievalResponse, error) {
	var out RetrievalResponse
	if err := c.post(ctx, "/connect/pair/data", getDataRequest{TxnID: txnID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CardReadData retrieves the result of a card read transaction. Both the
// RP-initiated and device-initiated variants read back through the same
// provider call, keyed only by the transaction identifier.
func (c *Client) CardReadData(ctx context.Context, txnID string) (*RetrievalResponse, error) {
	var out RetrievalResponse
	if err := c.post(ctx, "/connect/cardread/data", getDataRequest{TxnID: txnID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeviceInitiatedCardReadData retrieves the result of a card read the
// device side started. Like the other device-initiated retrievals it can
// carry the end user's IP address for a mismatch check.
func (c *Client) DeviceInitiatedCardReadData(ctx context.Context, txnID, userIPAddress string) (*RetrievalResponse, error) {
	req := getDataRequest{
		TxnID:         txnID,
		UserIPAddress: strings.TrimSpace(userIPAddress),
	}
	var out RetrievalResponse
	if err := c.post(ctx, "/connect/device/cardread/data", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeviceInitiatedGetDevice retrieves device information for a transaction
// initiated from the device side. When userIPAddress is supplied the provider
// compares it against the address the device connected from and reports a
// client_ip_mismatch warning on a difference.
func (c *Client) DeviceInitiatedGetDevice(ctx context.Context, txnID, userIPAddress string) (*GetDeviceIDResponse, error) {
	req := getDataRequest{
		TxnID:         txnID,
		UserIPAddress: strings.TrimSpace(userIPAddress),
	}
	var out GetDeviceIDResponse
	if err := c.post(ctx, "/connect/device/data", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitSetQuickCode initiates a QuickCode setup for a user with at least one
// paired device; the returned transaction identifier is handed to the user's
// mobile application, which completes the setup through the provider SDK.
func (c *Client) InitSetQuickCode(ctx context.Context, userID, txnContext string) (*TxnResponse, error) {
	req := generateQuickCodeRequest{
		UserID:  strings.TrimSpace(userID),
		Context: strings.TrimSpace(txnContext),
	}
	var out TxnResponse
	if err := c.post(ctx, "/connect/quickcode", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetQuickCodeData retrieves the result of a QuickCode setup transaction.
func (c *Client) SetQuickCodeData(ctx context.Context, txnID string) (*RetrievalResponse, error) {
	var out RetrievalResponse
	if err := c.post(ctx, "/connect/quickcode/data", getDataRequest{TxnID: txnID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyQuickCodeData retrieves the result of an SDK-initiated QuickCode
// verification.
func (c *Client) VerifyQuickCodeData(ctx context.Context, txnID string) (*VerifyQuickCodeResponse, error) {
	var out VerifyQuickCodeResponse
	if err := c.post(ctx, "/connect/quickcode/verify", getDataRequest{TxnID: txnID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelRequest cooperatively abandons a previously initiated transaction.
// It is advisory: the provider may already be mid-flight with the user, in
// which case the eventual device response is discarded server-side.
func (c *Client) CancelRequest(ctx context.Context, txnID, txnContext string) (*TxnResponse, error) {
	req := cancelRequest{
		TxnID:   txnID,
		Context: strings.TrimSpace(txnContext),
	}
	var out TxnResponse
	if err := c.post(ctx, "/connect/cancel", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProvisioningAuthorizationCode returns a code for provisioning a mobile
// SDK for the first time or after a reset.
func (c *Client) GetProvisioningAuthorizationCode(ctx context.Context) (*TxnResponse, error) {
	var out TxnResponse
	if err := c.post(ctx, "/connect/provisioning/authcode", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddUser(ctx context.Context, userID string, phones []domain.Phone) (*TxnResponse, error) {
	req := addUserRequest{
		UserID: strings.TrimSpace(userID),
		Phones: phoneEntries(phones),
	}
	var out TxnResponse
	if err := c.post(ctx, "/mgmt/users/add", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (*GetUserResponse, error) {
	var out GetUserResponse
	if err := c.post(ctx, "/mgmt/users/get", userRequest{UserID: strings.TrimSpace(userID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveUser(ctx context.Context, userID string) (*TxnResponse, error) {
	var out TxnResponse
	if err := c.post(ctx, "/mgmt/users/remove", userRequest{UserID: strings.TrimSpace(userID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser replaces the user's phone list; allowCreate nil means the
// provider default (false) applies.
func (c *Client) UpdateUser(ctx context.Context, userID string, allowCreate *bool, phones []domain.Phone) (*TxnResponse, error) {
	req := updateUserRequest{
		UserID:      strings.TrimSpace(userID),
		AllowCreate: allowCreate,
		Phones:      phoneEntries(phones),
	}
	var out TxnResponse
	if err := c.post(ctx, "/mgmt/users/update", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddDevice(ctx context.Context, userID, deviceID string, verified *bool) (*TxnResponse, error) {
	req := addDeviceRequest{
		UserID:         strings.TrimSpace(userID),
		DeviceID:       strings.TrimSpace(deviceID),
		VerifiedDevice: verified,
	}
	var out TxnResponse
	if err := c.post(ctx, "/mgmt/devices/add", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveDevice(ctx context.Context, userID, deviceID string) (*TxnResponse, error) {
	req := deviceRequest{
		UserID:   strings.TrimSpace(userID),
		DeviceID: strings.TrimSpace(deviceID),
	}
	var out TxnResponse
	if err := c.post(ctx, "/mgmt/devices/remove", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveAllUserDevices(ctx context.Context, userID string) (*TxnResponse, error) {
	var out TxnResponse
	if err := c.post(ctx, "/mgmt/devices/removeall", userRequest{UserID: strings.TrimSpace(userID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDevices(ctx context.Context, userID string) (*GetDevicesResponse, error) {
	var out GetDevicesResponse
	if err := c.post(ctx, "/mgmt/devices/list", userRequest{UserID: strings.TrimSpace(userID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDeviceByID(ctx context.Context, deviceID string) (*GetDeviceIDResponse, error) {
	var out GetDeviceIDResponse
	if err := c.post(ctx, "/mgmt/devices/get", deviceRequest{DeviceID: strings.TrimSpace(deviceID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyDevice marks a device as verified for a user after the RP has run
// its own verification process.
func (c *Client) VerifyDevice(ctx context.Context, userID, deviceID string) (*TxnResponse, error) {
	req := deviceRequest{
		UserID:   strings.TrimSpace(userID),
		DeviceID: strings.TrimSpace(deviceID),
	}
	var out TxnResponse
	if err := c.post(ctx, "/mgmt/devices/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeverifyDevice clears the verified mark; with a blank deviceID all of the
// user's devices are de-verified.
func (c *Client) DeverifyDevice(ctx context.Context, userID, deviceID string) (*TxnResponse, error) {
	req := deviceRequest{
		UserID:   strings.TrimSpace(userID),
		DeviceID: strings.TrimSpace(deviceID),
	}
	var out TxnResponse
	if err := c.post(ctx, "/mgmt/devices/deverify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
