// Package domain contains the core business entities and value objects.
package domain

import (
	"sync"
	"time"
)

// RateLimiter implements an exact sliding-window limiter keyed by endpoint id.
// Each bucket holds the admission timestamps of recent requests; on every
// check the bucket is pruned to the current window before the decision is
// made, so there is no fixed-window boundary burst.
//
// State is process-lifetime and in-memory only. Buckets are created lazily
// on the first request for an endpoint id and pruned on every admission
// check, so the retained count is bounded by the configured maximum.
type RateLimiter struct {
	// mu guards the bucket map and every bucket. Prune and append for one
	// admission must be observed atomically relative to other checks.
	mu      sync.Mutex
	buckets map[string][]time.Time
}

// NewRateLimiter creates an empty rate limiter.
// Construct one per service instance and share it by handle; there is no
// package-level state.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string][]time.Time),
	}
}

// Admit reports whether a request for the given endpoint id is allowed at
// time now, and records it when allowed. Timestamps older than now-window
// are dropped first; if the surviving count already meets maxRequests the
// request is rejected without being recorded.
//
// maxRequests <= 0 rejects everything; window <= 0 retains nothing, so only
// maxRequests simultaneous same-instant admissions would be possible.
func (l *RateLimiter) Admit(endpointID string, maxRequests int, window time.Duration, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-window)
	stamps := l.buckets[endpointID]

	// Keep only timestamps strictly inside the window.
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= maxRequests {
		l.buckets[endpointID] = kept
		return false
	}

	l.buckets[endpointID] = append(kept, now)
	return true
}

// BucketCount returns the number of endpoint ids with recorded requests.
// Useful for the health endpoint and monitoring.
func (l *RateLimiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Pending returns the number of retained timestamps for an endpoint id
// without pruning. Intended for diagnostics only.
func (l *RateLimiter) Pending(endpointID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets[endpointID])
}
