package domain

import (
	"fmt"
	"net/url"
	"time"
)

// NotificationMode selects how the relying party is told that a pairing
// completed. Free-form strings from callers are parsed into this closed set
// before anything is sent to the provider.
type NotificationMode string

const (
	NotifyNone     NotificationMode = "none"
	NotifyHTTPPost NotificationMode = "httpPost"
	NotifyChannel  NotificationMode = "notificationChannel"
)

func ParseNotificationMode(s string) (NotificationMode, error) {
	if s == "" {
		return NotifyNone, nil
	}
	switch NotificationMode(s) {
	case NotifyNone, NotifyHTTPPost, NotifyChannel:
		return NotificationMode(s), nil
	}
	return "", fmt.Errorf("%w: unrecognized notification mode %q", ErrValidation, s)
}

const maxContextLen = 30

// PairingRequest carries everything needed to initiate a device pairing.
// DeviceConstraints is an opaque pass-through object owned by the provider.
type PairingRequest struct {
	UserID            string
	Language          string
	Context           string
	DeviceConstraints map[string]any
	Expiry            time.Time
	VerifyDevice      bool
	NotificationMode  NotificationMode
	NotificationURL   string
}

// Validate enforces the local invariants before any network call:
// NotificationURL must be present and well-formed exactly when the mode is
// httpPost, and the context string is capped at 30 characters.
func (r PairingRequest) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if len(r.Context) > maxContextLen {
		return fmt.Errorf("%w: context exceeds %d characters", ErrValidation, maxContextLen)
	}
	switch r.NotificationMode {
	case NotifyHTTPPost:
		if r.NotificationURL == "" {
			return fmt.Errorf("%w: notificationUrl is required for httpPost notification", ErrValidation)
		}
		parsed, err := url.Parse(r.NotificationURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: notificationUrl is not a valid absolute URL", ErrValidation)
		}
	case NotifyNone, NotifyChannel, "":
		if r.NotificationURL != "" {
			return fmt.Errorf("%w: notificationUrl is only valid with httpPost notification", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unrecognized notification mode %q", ErrValidation, r.NotificationMode)
	}
	return nil
}

// PairingHandle is what an initiation returns: the transaction identifier,
// the human-presentable pairing code, and, for notificationChannel mode, the
// provider-issued channel handle.
type PairingHandle struct {
	TxnID              string
	PairCode           string
	NotificationHandle string
	ExpiresAt          time.Time
}

// PairingNotification is the completion message the provider POSTs to the
// relying party's notification endpoint when the mode is httpPost.
type PairingNotification struct {
	TxnID  string
	Status string // "success" or "failure"
}
