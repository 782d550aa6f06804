// Package retry provides exponential backoff and retry logic for handling
// transient failures, particularly thread detail fetches through the browser.
//
// Features:
//   - Exponential and constant backoff strategies
//   - Jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Configurable retry predicates
//   - Integration with the scraper's error classifications
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return session.CaptureThreadDetail(ctx, threadID)
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 5,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    2 * time.Second,
//			MaxDelay:     30 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// Error handling:
//
// DefaultRetryIf retries capture and rate limit errors and refuses parse,
// structure and storage errors, which will not improve on a second attempt.
// RateLimitBackoff returns a strategy with long, slowly growing delays for
// use when the platform starts throttling.
package retry
