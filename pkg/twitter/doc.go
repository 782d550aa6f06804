// Package twitter parses intercepted GraphQL responses into canonical post
// records.
//
// Two response families are understood:
//   - UserTweets: the paginated profile timeline, yielding posts plus the
//     ids of threads whose conversation preview is incomplete
//   - TweetDetail: a single conversation, used to backfill those threads
//
// Parsing is fault isolated per entry: a malformed post skips that entry and
// the rest of the response still parses. Outcomes are aggregated into a
// Report so callers can log how many entries a response yielded and why the
// rest were skipped. A response missing its expected top-level container
// parses to an empty result rather than an error.
//
// ExtractPost is the normalization step shared by both parsers; it is a pure
// function and safe to call with partially populated objects.
package twitter
