package certfetch

import (
	"context"
	"sync"
	"time"
)

// PEMSource yields the PEM bytes published at a URL.
type PEMSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CachingFetcher wraps a PEMSource with an in-process TTL cache keyed by
// URL. Only successful fetches are cached; errors always go back to the
// source on the next call.
type CachingFetcher struct {
	source PEMSource
	ttl    time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	pem       []byte
	expiresAt time.Time
}

func NewCaching(source PEMSource, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.ttl <= 0 {
		return c.source.Fetch(ctx, url)
	}

	c.mu.Lock()
	entry, ok := c.entries[url]
	if ok && time.Now().Before(entry.expiresAt) {
		pem := entry.pem
		c.mu.Unlock()
		return pem, nil
	}
	if ok {
		delete(c.entries, url)
	}
	c.mu.Unlock()

	pem, err := c.source.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[url] = cacheEntry{pem: pem, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return pem, nil
}

var _ PEMSource = (*Fetcher)(nil)
var _ PEMSource = (*CachingFetcher)(nil)
