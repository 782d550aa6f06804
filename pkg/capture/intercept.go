package capture

import (
	"context"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"xscraper/pkg/logger"
)

// CapturedResponse is one GraphQL response body lifted off the wire.
type CapturedResponse struct {
	URL  string
	Body []byte
}

// interceptor watches a tab's network traffic for GraphQL responses whose
// URL contains the configured operation name, then fetches their bodies
// once the browser has finished loading them.
type interceptor struct {
	ctx     context.Context
	log     logger.Logger
	pattern string

	mu      sync.Mutex
	pending map[network.RequestID]string
	seen    map[string]bool

	bodies chan CapturedResponse
}

func newInterceptor(ctx context.Context, log logger.Logger, pattern string) *interceptor {
	return &interceptor{
		ctx:     ctx,
		log:     log,
		pattern: pattern,
		pending: make(map[network.RequestID]string),
		seen:    make(map[string]bool),
		bodies:  make(chan CapturedResponse, 16),
	}
}

// listen registers the CDP event listener on the interceptor's tab.
func (in *interceptor) listen() {
	chromedp.ListenTarget(in.ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *network.EventResponseReceived:
			in.track(ev.RequestID, ev.Response.URL)
		case *network.EventLoadingFinished:
			if url, ok := in.finish(ev.RequestID); ok {
				// Body fetches must not block the event loop.
				go in.fetchBody(ev.RequestID, url)
			}
		}
	})
}

// track remembers a matching in-flight request. Repeat requests for a URL
// already captured are ignored, which keeps re-issued cursor pages from
// producing duplicate batches.
func (in *interceptor) track(id network.RequestID, url string) bool {
	if !in.matches(url) {
		return false
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.seen[url] {
		return false
	}
	in.seen[url] = true
	in.pending[id] = url
	return true
}

// finish resolves a tracked request once its body is fully available.
func (in *interceptor) finish(id network.RequestID) (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	url, ok := in.pending[id]
	if ok {
		delete(in.pending, id)
	}
	return url, ok
}

func (in *interceptor) matches(url string) bool {
	return strings.Contains(url, "/"+in.pattern)
}

func (in *interceptor) fetchBody(id network.RequestID, url string) {
	var body []byte
	err := chromedp.Run(in.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		body, err = network.GetResponseBody(id).Do(ctx)
		return err
	}))
	if err != nil {
		// The tab may have navigated away before we read the body.
		in.log.WarnWithFields("response body unavailable", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return
	}

	select {
	case in.bodies <- CapturedResponse{URL: url, Body: body}:
	case <-in.ctx.Done():
	}
}
