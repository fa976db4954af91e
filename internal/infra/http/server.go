package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/config"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/infra/certfetch"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/infra/certpolicy"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/infra/crypto"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/infra/db"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/infra/provider"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/infra/ratelimit"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/usecase"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	provider *provider.Client
	pairing  *usecase.Pairing
	verify   *usecase.VerifyAssertion
	audit    *usecase.AuditEmitter

	initErr error

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool
}

// NewServer wires the full dependency graph from configuration: provider
// client, certificate fetcher and policy, storage, rate limiter. Wiring
// errors are deferred to Run so construction itself never fails.
func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

// ServerDeps lets tests and callers inject pre-built dependencies instead
// of the config-driven wiring.
type ServerDeps struct {
	Provider    *provider.Client
	Pairing     *usecase.Pairing
	Verify      *usecase.VerifyAssertion
	Audit       *usecase.AuditEmitter
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{
		cfg:      cfg,
		r:        r,
		provider: deps.Provider,
		pairing:  deps.Pairing,
		verify:   deps.Verify,
		audit:    deps.Audit,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	client, err := provider.NewFromConfig(s.cfg)
	if err != nil {
		s.initErr = err
		return
	}
	s.provider = client

	var auditRepo usecase.AuditEventRepository
	var journal usecase.TransactionJournal
	if s.store != nil && s.store.DB != nil {
		auditRepo = db.NewAuditEventRepository(s.store.DB)
		journal = db.NewTransactionRepository(s.store.DB)
	}
	s.audit = usecase.NewAuditEmitter(auditRepo, nil)

	s.pairing = &usecase.Pairing{
		Gateway:       provider.NewGateway(client),
		Journal:       journal,
		Audit:         s.audit,
		DefaultExpiry: s.cfg.PairingExpiry(),
	}

	var fetcher usecase.CertificateSource = certfetch.New(certfetch.WithTimeout(s.cfg.CertFetchTimeout()))
	if ttl := s.cfg.CertCacheTTL(); ttl > 0 {
		fetcher = certfetch.NewCaching(fetcher.(*certfetch.Fetcher), ttl)
	}
	policy, err := certpolicy.NewEngine(context.Background(), s.cfg.CertAllowedHosts)
	if err != nil {
		s.initErr = err
		return
	}
	s.verify = &usecase.VerifyAssertion{
		Codec:   crypto.Codec{},
		Policy:  policy,
		Fetcher: fetcher,
		Audit:   s.audit,
	}

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	if s.cfg.RateLimitWindowSeconds > 0 {
		s.rateLimitWindow = time.Duration(s.cfg.RateLimitWindowSeconds) * time.Second
	}
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/pairings", s.handleStartPairing)
		v1.GET("/pairings/:txn_id", s.handlePairingResult)
		v1.POST("/pairings/notifications", s.handlePairingNotification)

		v1.GET("/transactions/:txn_id/card", s.handleCardReadData)
		v1.GET("/transactions/:txn_id/card-device-initiated", s.handleDeviceInitiatedCardReadData)
		v1.GET("/transactions/:txn_id/device", s.handleDeviceInitiatedGetDevice)
		v1.POST("/transactions/:txn_id/cancel", s.handleCancel)

		v1.POST("/quickcodes", s.handleInitSetQuickCode)
		v1.GET("/quickcodes/:txn_id", s.handleSetQuickCodeData)
		v1.GET("/quickcodes/:txn_id/verification", s.handleVerifyQuickCodeData)
		v1.POST("/quickcodes/mobile", s.handleMobileQuickCodeBootstrap)

		v1.POST("/provisioning/authorization-code", s.handleProvisioningAuthCode)

		v1.POST("/users", s.handleAddUser)
		v1.GET("/users/:user_id", s.handleGetUser)
		v1.PUT("/users/:user_id", s.handleUpdateUser)
		v1.DELETE("/users/:user_id", s.handleRemoveUser)

		v1.POST("/users/:user_id/devices", s.handleAddDevice)
		v1.GET("/users/:user_id/devices", s.handleGetDevices)
		v1.DELETE("/users/:user_id/devices", s.handleRemoveAllUserDevices)
		v1.DELETE("/users/:user_id/devices/:device_id", s.handleRemoveDevice)
		v1.POST("/users/:user_id/devices/:device_id/verification", s.handleVerifyDevice)
		v1.DELETE("/users/:user_id/devices/:device_id/verification", s.handleDeverifyDevice)
		v1.GET("/devices/:device_id", s.handleGetDeviceByID)
	}

	// gin cannot register paths containing a colon action suffix, so those
	// are dispatched from the NoRoute fallback.
	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) handleNoRoute(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		switch c.Request.URL.Path {
		case "/v1/assertions:verify":
			s.handleVerifyAssertion(c)
			return
		case "/v1/logins:verify":
			s.handleVerifyLogin(c)
			return
		}
	}
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func (s *Server) Run() error {
	if s.initErr != nil {
		return s.initErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}
