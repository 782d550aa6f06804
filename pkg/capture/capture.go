package capture

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"xscraper/pkg/config"
	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
)

// ResponseHandler consumes one captured timeline response body and reports
// how many previously unseen posts it contained.
type ResponseHandler func(body []byte) (int, error)

// Session owns a logged-in browser and captures GraphQL responses from it.
// One session serves a whole scrape run; thread detail fetches open their
// own tabs so they can run concurrently with each other.
type Session struct {
	cfg *config.CaptureConfig
	log logger.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewSession launches the browser. The user data directory carries login
// cookies between runs, so a profile that has signed in once stays signed
// in for later scrapes.
func NewSession(ctx context.Context, cfg *config.CaptureConfig, log logger.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.Headless),
		// Prevent `navigator.webdriver = true`, which seems enough to trick
		// X into believing we're not using a browser automation tool.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser and enable network events for the first tab.
	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		browserCancel()
		allocCancel()
		return nil, errs.Wrap(err, errs.ErrorTypeCapture, "failed to start browser")
	}

	return &Session{
		cfg:           cfg,
		log:           log,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

// CaptureTimeline opens the profile page and scrolls it until the handler
// has seen limit posts (0 means no limit) or the timeline stops yielding
// new ones. Every UserTweets response body observed on the wire is passed
// to the handler in arrival order.
func (s *Session) CaptureTimeline(ctx context.Context, handle string, limit int, handler ResponseHandler) error {
	tabCtx, cancel := context.WithCancel(s.browserCtx)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-tabCtx.Done():
		}
	}()

	in := newInterceptor(tabCtx, s.log, "UserTweets")
	in.listen()

	profileURL := "https://x.com/" + handle
	s.log.InfoWithFields("opening profile", map[string]interface{}{
		"handle": handle,
		"url":    profileURL,
	})

	navCtx, navCancel := context.WithTimeout(tabCtx, s.cfg.NavigationTimeout)
	defer navCancel()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(profileURL),
		chromedp.WaitVisible(`article[data-testid="tweet"]`, chromedp.ByQuery),
	); err != nil {
		return errs.Wrap(err, errs.ErrorTypeCapture, "failed to load profile timeline")
	}

	collected := 0
	stalls := 0
	for {
		// Give the page time to issue and finish the next batch request.
		if err := sleepJitter(tabCtx, s.cfg.PauseMin, s.cfg.PauseMax); err != nil {
			return err
		}

		fresh := s.drainResponses(in, handler)
		collected += fresh

		if limit > 0 && collected >= limit {
			s.log.InfoWithFields("post limit reached", map[string]interface{}{
				"posts": collected,
				"limit": limit,
			})
			return nil
		}

		if fresh == 0 {
			stalls++
			if stalls >= s.cfg.StallLimit {
				s.log.InfoWithFields("timeline exhausted", map[string]interface{}{
					"posts":  collected,
					"stalls": stalls,
				})
				return nil
			}
		} else {
			stalls = 0
			s.log.DebugWithFields("captured timeline batch", map[string]interface{}{
				"new_posts": fresh,
				"total":     collected,
			})
		}

		if err := s.scrollOnce(tabCtx); err != nil {
			return errs.Wrap(err, errs.ErrorTypeCapture, "scroll failed")
		}
	}
}

// CaptureThreadDetail opens the thread's permalink in a fresh tab and
// returns the first TweetDetail response body the page produces.
func (s *Session) CaptureThreadDetail(ctx context.Context, threadID string) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	defer cancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, s.cfg.NavigationTimeout)
	defer timeoutCancel()
	go func() {
		select {
		case <-ctx.Done():
			timeoutCancel()
		case <-tabCtx.Done():
		}
	}()

	in := newInterceptor(tabCtx, s.log, "TweetDetail")
	in.listen()

	statusURL := "https://x.com/i/status/" + threadID
	if err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(statusURL),
	); err != nil {
		return nil, errs.Wrap(err, errs.ErrorTypeCapture, "failed to open thread page")
	}

	select {
	case resp := <-in.bodies:
		return resp.Body, nil
	case <-tabCtx.Done():
		return nil, errs.Wrap(tabCtx.Err(), errs.ErrorTypeCapture, "no thread detail response before timeout")
	}
}

// drainResponses hands every queued response body to the handler and
// returns the number of new posts they contained.
func (s *Session) drainResponses(in *interceptor, handler ResponseHandler) int {
	fresh := 0
	for {
		select {
		case resp := <-in.bodies:
			n, err := handler(resp.Body)
			if err != nil {
				s.log.WarnWithFields("captured response rejected", map[string]interface{}{
					"url":   resp.URL,
					"error": err.Error(),
				})
				continue
			}
			fresh += n
		default:
			return fresh
		}
	}
}

// scrollOnce scrolls the page down by a randomised distance.
func (s *Session) scrollOnce(ctx context.Context) error {
	distance := scrollDistance(s.cfg.ScrollMinPixels, s.cfg.ScrollMaxPixels)
	script := fmt.Sprintf("window.scrollBy(0, %d)", distance)
	return chromedp.Run(ctx, chromedp.Evaluate(script, nil))
}

// scrollDistance picks a scroll length between min and max inclusive.
func scrollDistance(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}

// pauseDuration picks a pause between min and max.
func pauseDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// sleepJitter sleeps a randomised duration or returns early when the
// context is cancelled.
func sleepJitter(ctx context.Context, min, max time.Duration) error {
	timer := time.NewTimer(pauseDuration(min, max))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
