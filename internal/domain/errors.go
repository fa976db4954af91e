package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrMalformedAssertion   = errors.New("malformed assertion")
	ErrCertificateFetch     = errors.New("certificate fetch failed")
	ErrCertSourceNotAllowed = errors.New("certificate source not allowed")
	ErrUnknownTransaction   = errors.New("unknown transaction")
	ErrNotFound             = errors.New("not found")
)

// ProviderError is a structured error returned by the remote provider,
// either as an {error, errorDescription} body or a non-2xx status.
type ProviderError struct {
	Code        string
	Description string
	HTTPStatus  int
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("provider error %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("provider error %s", e.Code)
}

// Is maps the provider's unknown_txn code onto ErrUnknownTransaction so
// callers can branch with errors.Is without inspecting codes.
func (e *ProviderError) Is(target error) bool {
	return target == ErrUnknownTransaction && e.Code == ProviderErrUnknownTxn
}

const (
	ProviderErrUnknownTxn         = "unknown_txn"
	ProviderErrInvalidCredentials = "invalid_credentials"
	ProviderErrUnknownUser        = "unknown_user"
	ProviderErrSystemError        = "system_error"
)
