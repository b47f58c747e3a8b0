package ratelimit

import "time"

// LimitConfig caps the number of requests in a sliding window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps scopes to the limits enforced for them.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy is applied when rate limiting is enabled without per-endpoint limits.
// Redirects and view beacons are read-heavy, so the read scope is generous.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Window: time.Minute, Max: 2000},
			},
			ScopeRead: {
				{Window: time.Minute, Max: 1000},
			},
			ScopeWrite: {
				{Window: time.Minute, Max: 300},
				{Window: time.Hour, Max: 5000},
			},
			ScopeAdmin: {
				{Window: time.Minute, Max: 60},
			},
		},
	}
}
