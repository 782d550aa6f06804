// Package capture drives a real browser over the profile being scraped
// and lifts the platform's own GraphQL responses off the wire.
//
// Rather than reverse engineering the private API, the package lets the
// web client make its usual UserTweets and TweetDetail requests and
// records the response bodies through the DevTools protocol. Scrolling
// uses randomised distances and pauses so request timing resembles a
// person reading the page.
//
// A Session owns one browser process. CaptureTimeline runs in the first
// tab and feeds every timeline batch to a handler as it arrives;
// CaptureThreadDetail opens a disposable tab per thread, which lets the
// backfill workers fetch several threads concurrently against the same
// logged-in profile.
//
// The session never sees parsed posts. Bodies go to the caller as raw
// bytes and all interpretation happens in the twitter package.
package capture
