package scraper

import (
	"context"

	"xscraper/pkg/capture"
)

// Capturer defines the browser operations the pipeline drives. It is
// satisfied by capture.Session.
type Capturer interface {
	CaptureTimeline(ctx context.Context, handle string, limit int, handler capture.ResponseHandler) error
	CaptureThreadDetail(ctx context.Context, threadID string) ([]byte, error)
	Close()
}
