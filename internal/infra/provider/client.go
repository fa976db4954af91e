package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/config"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

// Client issues synchronous calls against the remote identity provider.
// Every call is forwarded verbatim, once: no retries (a retried initiation
// could create a duplicate transaction with user-facing side effects) and no
// local caching. Transaction identifiers are provider-issued and opaque.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func New(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewFromConfig builds a client from process configuration, loading the
// mutual-TLS client credentials when both PEM paths are set.
func NewFromConfig(cfg config.Config) (*Client, error) {
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout()}
	if cfg.ProviderClientCertFile != "" && cfg.ProviderClientKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ProviderClientCertFile, cfg.ProviderClientKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load provider client credentials: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
		}
	}
	return New(cfg.ProviderURL, WithHTTPClient(httpClient)), nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c == nil {
		return errors.New("provider client is nil")
	}
	if c.baseURL == "" {
		return errors.New("provider base URL is required")
	}

	var bodyReader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal provider request: %w", err)
		}
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider call %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}

	// The provider reports structured errors in the body regardless of the
	// HTTP status, so the error envelope is checked first.
	var envelope struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"errorDescription"`
	}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &envelope)
	}
	if envelope.Error != "" {
		return &domain.ProviderError{
			Code:        envelope.Error,
			Description: envelope.ErrorDescription,
			HTTPStatus:  resp.StatusCode,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ProviderError{
			Code:        domain.ProviderErrSystemError,
			Description: fmt.Sprintf("provider returned status %d", resp.StatusCode),
			HTTPStatus:  resp.StatusCode,
		}
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
	}
	return nil
}
