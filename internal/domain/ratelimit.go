package domain

import (
	"context"
	"time"
)

// RateLimitDecision reports whether a request fits in the current window.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter is a fixed-window counter keyed by caller-chosen strings
// (here: client address + route).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
