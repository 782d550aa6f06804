// Package ratelimit paces thread detail fetches so the backfill workers
// never hammer the platform hard enough to trip throttling.
//
// The token bucket refills gradually: the sustained rate comes from the
// requests-per-minute budget while the bucket capacity bounds short
// bursts. Workers share one bucket, so the budget covers the whole pool
// rather than each worker individually.
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait(ctx) error - Block until a request is allowed or ctx ends
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// 30 requests per minute, bursts of 5
//	limiter := ratelimit.NewTokenBucket(30, 5)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // shutting down
//	}
//	// Proceed with request
package ratelimit
