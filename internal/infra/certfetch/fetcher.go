// Package certfetch retrieves PEM certificates from the URL carried in a
// signed assertion's header. Failures are deliberately coarse: callers only
// need to know that the certificate could not be obtained, not why.
package certfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

// maxCertBytes bounds the response body read; a PEM certificate chain is
// never anywhere near this size.
const maxCertBytes = 1 << 20

type Fetcher struct {
	httpClient *http.Client
}

type Option func(*Fetcher)

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.httpClient.Timeout = timeout
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the PEM body at url. Any failure, transport error,
// non-2xx status or an unreadable body, is reported as
// domain.ErrCertificateFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCertificateFetch, err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCertificateFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d from %s", domain.ErrCertificateFetch, resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCertBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCertificateFetch, err)
	}
	return body, nil
}
