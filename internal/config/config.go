package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	ProviderURL            string
	ProviderTimeoutSeconds int
	ProviderClientCertFile string
	ProviderClientKeyFile  string

	CertFetchTimeoutSeconds int
	CertCacheTTLSeconds     int
	CertAllowedHosts        []string

	PairingExpiryMinutes int

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitFailClosed    bool
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                addr,
		PostgresDSN:             os.Getenv("POSTGRES_DSN"),
		LogLevel:                envDefault("LOG_LEVEL", "info"),
		ProviderURL:             os.Getenv("PROVIDER_URL"),
		ProviderTimeoutSeconds:  envIntDefault("PROVIDER_TIMEOUT_SECONDS", 10),
		ProviderClientCertFile:  os.Getenv("PROVIDER_CLIENT_CERT_FILE"),
		ProviderClientKeyFile:   os.Getenv("PROVIDER_CLIENT_KEY_FILE"),
		CertFetchTimeoutSeconds: envIntDefault("CERT_FETCH_TIMEOUT_SECONDS", 10),
		CertCacheTTLSeconds:     envIntDefault("CERT_CACHE_TTL_SECONDS", 0),
		CertAllowedHosts:        envList("CERT_ALLOWED_HOSTS"),
		PairingExpiryMinutes:    envIntDefault("PAIRING_EXPIRY_MINUTES", 30),
		RateLimitRequests:       envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds:  envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitFailClosed:     envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RateLimitMaxKeys:        envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 envIntDefault("REDIS_DB", 0),
	}
}

func (c Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

func (c Config) CertFetchTimeout() time.Duration {
	return time.Duration(c.CertFetchTimeoutSeconds) * time.Second
}

func (c Config) CertCacheTTL() time.Duration {
	if c.CertCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CertCacheTTLSeconds) * time.Second
}

func (c Config) PairingExpiry() time.Duration {
	if c.PairingExpiryMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.PairingExpiryMinutes) * time.Minute
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
