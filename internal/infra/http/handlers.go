package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type pairingInput struct {
	UserID            string         `json:"userId"`
	Language          string         `json:"language"`
	Context           string         `json:"context"`
	DeviceConstraints map[string]any `json:"deviceConstraints"`
	Expiry            string         `json:"expiry"`
	VerifyDevice      bool           `json:"verifyDevice"`
	NotificationType  string         `json:"notificationType"`
	NotificationURL   string         `json:"notificationUrl"`
}

type pairingResponse struct {
	TxnID              string `json:"txnId"`
	PairCode           string `json:"pairCode"`
	NotificationHandle string `json:"notificationHandle,omitempty"`
	ExpiresAt          string `json:"expiresAt"`
}

type retrievalResponse struct {
	TxnID    string         `json:"txnId"`
	State    string         `json:"state"`
	Payload  map[string]any `json:"payload,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

type notificationInput struct {
	TxnID  string `json:"txnId"`
	Status string `json:"status"`
}

type verifyAssertionInput struct {
	Token string `json:"token"`
}

type cancelInput struct {
	Context string `json:"context"`
}

func (s *Server) handleStartPairing(c *gin.Context) {
	if !s.enforceRateLimit(c, "pairings:start") {
		return
	}
	if s.pairing == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var in pairingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}

	mode, err := domain.ParseNotificationMode(in.NotificationType)
	if err != nil {
		writeError(c, err)
		return
	}
	req := domain.PairingRequest{
		UserID:            in.UserID,
		Language:          in.Language,
		Context:           in.Context,
		DeviceConstraints: in.DeviceConstraints,
		VerifyDevice:      in.VerifyDevice,
		NotificationMode:  mode,
		NotificationURL:   in.NotificationURL,
	}
	if in.Expiry != "" {
		expiry, err := time.Parse(time.RFC3339, in.Expiry)
		if err != nil {
			writeErrorCode(c, http.StatusBadRequest, "VALIDATION_FAILED", "expiry is not a valid RFC 3339 timestamp")
			return
		}
		req.Expiry = expiry
	}

	handle, err := s.pairing.Start(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pairingResponse{
		TxnID:              handle.TxnID,
		PairCode:           handle.PairCode,
		NotificationHandle: handle.NotificationHandle,
		ExpiresAt:          handle.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePairingResult(c *gin.Context) {
	if s.pairing == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	result, err := s.pairing.Result(c.Request.Context(), c.Param("txn_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildRetrievalResponse(result))
}

func (s *Server) handlePairingNotification(c *gin.Context) {
	if s.pairing == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var in notificationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	err := s.pairing.Notify(c.Request.Context(), domain.PairingNotification{
		TxnID:  in.TxnID,
		Status: in.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleVerifyAssertion(c *gin.Context) {
	if !s.enforceRateLimit(c, "assertions:verify") {
		return
	}
	if s.verify == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var in verifyAssertionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if in.Token == "" {
		writeErrorCode(c, http.StatusBadRequest, "VALIDATION_FAILED", "token is required")
		return
	}
	outcome, err := s.verify.Execute(c.Request.Context(), in.Token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(outcome)})
}

// handleVerifyLogin acknowledges a completed SDK login. The actual trust
// decision happened when the assertion was verified; this endpoint only
// confirms receipt to the mobile flow.
func (s *Server) handleVerifyLogin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *Server) handleCardReadData(c *gin.Context) {
	s.retrieve(c, domain.TxnKindCardRead, func() (*retrievalResponse, error) {
		resp, err := s.provider.CardReadData(c.Request.Context(), c.Param("txn_id"))
		if err != nil {
			return nil, err
		}
		out := buildRetrievalResponse(resp.ToDomain())
		return &out, nil
	})
}

// handleDeviceInitiatedCardReadData reads back a card read that was started
// from the device rather than by this server. The optional user_ip query
// parameter is forwarded so the provider can flag a client address mismatch.
func (s *Server) handleDeviceInitiatedCardReadData(c *gin.Context) {
	s.retrieve(c, domain.TxnKindCardRead, func() (*retrievalResponse, error) {
		resp, err := s.provider.DeviceInitiatedCardReadData(c.Request.Context(), c.Param("txn_id"), c.Query("user_ip"))
		if err != nil {
			return nil, err
		}
		out := buildRetrievalResponse(resp.ToDomain())
		return &out, nil
	})
}

func (s *Server) handleDeviceInitiatedGetDevice(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.DeviceInitiatedGetDevice(c.Request.Context(), c.Param("txn_id"), c.Query("user_ip"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := gin.H{}
	if dev := resp.Device(); dev != nil {
		out["device"] = gin.H{
			"deviceId": dev.DeviceID,
			"category": dev.Category,
			"verified": dev.Verified,
		}
	}
	if len(resp.Warnings) > 0 {
		out["warnings"] = resp.Warnings
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCancel(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var in cancelInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
			return
		}
	}
	txnID := c.Param("txn_id")
	resp, err := s.provider.CancelRequest(c.Request.Context(), txnID, in.Context)
	if s.audit != nil {
		s.audit.TransactionCanceled(c.Request.Context(), txnID, err)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txnId": resp.TxnID})
}

func (s *Server) retrieve(c *gin.Context, kind domain.TransactionKind, fetch func() (*retrievalResponse, error)) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	out, err := fetch()
	if s.audit != nil {
		state := domain.TxnStateUnknown
		if out != nil {
			state = domain.TransactionState(out.State)
		}
		s.audit.TransactionRetrieved(c.Request.Context(), c.Param("txn_id"), kind, state, err)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if out.TxnID == "" {
		out.TxnID = c.Param("txn_id")
	}
	c.JSON(http.StatusOK, out)
}

func buildRetrievalResponse(result domain.RetrievalResult) retrievalResponse {
	out := retrievalResponse{
		TxnID:   result.TxnID,
		State:   string(result.State),
		Payload: result.Payload,
	}
	for _, w := range result.Warnings {
		out.Warnings = append(out.Warnings, string(w))
	}
	return out
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION_FAILED"
	case errors.Is(err, domain.ErrMalformedAssertion):
		status, code = http.StatusBadRequest, "MALFORMED_ASSERTION"
	case errors.Is(err, domain.ErrCertSourceNotAllowed):
		status, code = http.StatusForbidden, "CERT_SOURCE_NOT_ALLOWED"
	case errors.Is(err, domain.ErrUnknownTransaction):
		status, code = http.StatusNotFound, "UNKNOWN_TXN"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	default:
		var perr *domain.ProviderError
		if errors.As(err, &perr) {
			status, code = http.StatusBadGateway, "PROVIDER_"+perr.Code
		}
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
