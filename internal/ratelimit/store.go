package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for rate limit data storage.
type Store interface {
	// Record records a request and returns the count of requests in the current window,
	// pruning entries that fell out of it.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
