package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

type phoneInput struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

type addUserInput struct {
	UserID string       `json:"userId"`
	Phones []phoneInput `json:"phones"`
}

type updateUserInput struct {
	AllowCreate *bool        `json:"allowCreate"`
	Phones      []phoneInput `json:"phones"`
}

type addDeviceInput struct {
	DeviceID string `json:"deviceId"`
	Verified *bool  `json:"verified"`
}

type quickCodeInput struct {
	UserID  string `json:"userId"`
	Context string `json:"context"`
}

type mobileQuickCodeInput struct {
	UserID   string       `json:"userId"`
	DeviceID string       `json:"deviceId"`
	Context  string       `json:"context"`
	Phones   []phoneInput `json:"phones"`
}

func toDomainPhones(in []phoneInput) []domain.Phone {
	out := make([]domain.Phone, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Phone{Name: p.Name, Number: p.Number})
	}
	return out
}

func phonesOut(phones []domain.Phone) []gin.H {
	out := make([]gin.H, 0, len(phones))
	for _, p := range phones {
		out = append(out, gin.H{"name": p.Name, "number": p.Number})
	}
	return out
}

func (s *Server) handleInitSetQuickCode(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var in quickCodeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if in.UserID == "" {
		writeErrorCode(c, http.StatusBadRequest, "VALIDATION_FAILED", "userId is required")
		return
	}
	resp, err := s.provider.InitSetQuickCode(c.Request.Context(), in.UserID, in.Context)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleSetQuickCodeData(c *gin.Context) {
	s.retrieve(c, domain.TxnKindQuickCodeSetup, func() (*retrievalResponse, error) {
		resp, err := s.provider.SetQuickCodeData(c.Request.Context(), c.Param("txn_id"))
		if err != nil {
			return nil, err
		}
		out := buildRetrievalResponse(resp.ToDomain())
		return &out, nil
	})
}

func (s *Server) handleVerifyQuickCodeData(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	txnID := c.Param("txn_id")
	resp, err := s.provider.VerifyQuickCodeData(c.Request.Context(), txnID)
	if s.audit != nil {
		state := domain.TxnStateFailed
		if err == nil && resp.VerifiedQuickCode {
			state = domain.TxnStateCompleted
		}
		s.audit.TransactionRetrieved(c.Request.Context(), txnID, domain.TxnKindQuickCodeVerify, state, err)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verifiedQuickCode": resp.VerifiedQuickCode})
}

// handleMobileQuickCodeBootstrap is the composite onboarding flow for a
// mobile SDK that already holds a provisioned device: confirm the device is
// known to the provider, upsert the user, attach the device as verified,
// then start the QuickCode setup.
func (s *Server) handleMobileQuickCodeBootstrap(c *gin.Context) {
	if !s.enforceRateLimit(c, "quickcodes:mobile") {
		return
	}
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var in mobileQuickCodeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if in.UserID == "" || in.DeviceID == "" {
		writeErrorCode(c, http.StatusBadRequest, "VALIDATION_FAILED", "userId and deviceId are required")
		return
	}
	ctx := c.Request.Context()

	if _, err := s.provider.GetDeviceByID(ctx, in.DeviceID); err != nil {
		writeError(c, err)
		return
	}
	allowCreate := true
	if _, err := s.provider.UpdateUser(ctx, in.UserID, &allowCreate, toDomainPhones(in.Phones)); err != nil {
		writeError(c, err)
		return
	}
	verified := true
	if _, err := s.provider.AddDevice(ctx, in.UserID, in.DeviceID, &verified); err != nil {
		writeError(c, err)
		return
	}
	resp, err := s.provider.InitSetQuickCode(ctx, in.UserID, in.Context)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleProvisioningAuthCode(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.GetProvisioningAuthorizationCode(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleAddUser(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var in addUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if in.UserID == "" {
		writeErrorCode(c, http.StatusBadRequest, "VALIDATION_FAILED", "userId is required")
		return
	}
	resp, err := s.provider.AddUser(c.Request.Context(), in.UserID, toDomainPhones(in.Phones))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleGetUser(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId": resp.UserID,
		"phones": phonesOut(resp.PhoneList()),
	})
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var in updateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	resp, err := s.provider.UpdateUser(c.Request.Context(), c.Param("user_id"), in.AllowCreate, toDomainPhones(in.Phones))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleRemoveUser(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.RemoveUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleAddDevice(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var in addDeviceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if in.DeviceID == "" {
		writeErrorCode(c, http.StatusBadRequest, "VALIDATION_FAILED", "deviceId is required")
		return
	}
	resp, err := s.provider.AddDevice(c.Request.Context(), c.Param("user_id"), in.DeviceID, in.Verified)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleGetDevices(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.GetDevices(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	devices := make([]gin.H, 0)
	for _, d := range resp.DeviceList() {
		devices = append(devices, gin.H{
			"deviceId": d.DeviceID,
			"category": d.Category,
			"verified": d.Verified,
		})
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (s *Server) handleGetDeviceByID(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.GetDeviceByID(c.Request.Context(), c.Param("device_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	dev := resp.Device()
	if dev == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deviceId": dev.DeviceID,
		"category": dev.Category,
		"verified": dev.Verified,
	})
}

func (s *Server) handleRemoveDevice(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.RemoveDevice(c.Request.Context(), c.Param("user_id"), c.Param("device_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleRemoveAllUserDevices(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.RemoveAllUserDevices(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleVerifyDevice(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.VerifyDevice(c.Request.Context(), c.Param("user_id"), c.Param("device_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txnId": resp.TxnID})
}

func (s *Server) handleDeverifyDevice(c *gin.Context) {
	if s.provider == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	resp, err := s.provider.DeverifyDevice(c.Request.Context(), c.Param("user_id"), c.Param("device_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txnId": resp.TxnID})
}
