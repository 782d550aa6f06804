package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"xscraper/internal/backfill"
	"xscraper/pkg/capture"
	"xscraper/pkg/config"
	"xscraper/pkg/logger"
	"xscraper/pkg/metadata"
	"xscraper/pkg/models"
	"xscraper/pkg/ratelimit"
	"xscraper/pkg/reconcile"
	"xscraper/pkg/storage"
	"xscraper/pkg/twitter"
	"xscraper/pkg/ui"
)

// Scraper orchestrates the capture, backfill, and reconciliation pipeline
type Scraper struct {
	config      *config.Config
	logger      logger.Logger
	rateLimiter ratelimit.Limiter
	newSession  sessionFactory
}

// sessionFactory creates the browser session a run drives. Tests replace
// it to run the pipeline without a browser.
type sessionFactory func(ctx context.Context, cfg *config.CaptureConfig, log logger.Logger) (Capturer, error)

// Options control a single scrape run
type Options struct {
	// Limit stops the capture once roughly this many new posts have been
	// recorded. Zero scrapes until the timeline is exhausted.
	Limit int

	// Fresh discards units left behind by earlier runs before capturing.
	Fresh bool

	// SkipBackfill leaves incomplete threads as the timeline showed them.
	SkipBackfill bool
}

// Summary reports what a run produced
type Summary struct {
	Handle         string
	Posts          int
	BatchUnits     int
	ThreadUnits    int
	ThreadsFetched int
	ThreadsSkipped int
	ThreadsFailed  int
	CorpusPath     string
	Duration       time.Duration
	Interrupted    bool
}

// New creates a new Scraper instance
func New(cfg *config.Config) (*Scraper, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	// Rate limiter shared by all backfill workers
	var rateLimiter ratelimit.Limiter
	if cfg.RateLimit.RequestsPerMinute > 0 {
		rateLimiter = ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
	} else {
		rateLimiter = ratelimit.NewTokenBucket(30, 5) // Default 30/min
	}

	return &Scraper{
		config:      cfg,
		logger:      logger.GetLogger(),
		rateLimiter: rateLimiter,
		newSession: func(ctx context.Context, captureCfg *config.CaptureConfig, log logger.Logger) (Capturer, error) {
			return capture.NewSession(ctx, captureCfg, log)
		},
	}, nil
}

// runDir returns the directory holding a handle's capture units
func (s *Scraper) runDir(handle string) string {
	return filepath.Join(s.config.Output.BaseDirectory, handle)
}

// Scrape captures the handle's timeline, backfills threads the timeline
// only showed partially, and writes the reconciled corpus. Units are
// persisted as they arrive, so an interrupted run keeps everything
// captured so far and the next run resumes on top of it.
func (s *Scraper) Scrape(ctx context.Context, handle string, opts Options) (*Summary, error) {
	start := time.Now()

	runDir := s.runDir(handle)
	if opts.Fresh {
		if err := os.RemoveAll(runDir); err != nil {
			s.logger.WithError(err).WithField("handle", handle).Error("Failed to clear previous run")
			return nil, fmt.Errorf("failed to clear previous run: %w", err)
		}
	}

	store, err := storage.Open(runDir)
	if err != nil {
		s.logger.WithError(err).WithField("handle", handle).Error("Failed to open run directory")
		return nil, err
	}

	if n := len(store.ListBatches()); n > 0 {
		ui.PrintInfo("Resuming", fmt.Sprintf("%d batch units from earlier runs", n))
	}

	s.logger.InfoWithFields("Starting timeline capture", map[string]interface{}{
		"handle":  handle,
		"limit":   opts.Limit,
		"run_dir": runDir,
		"action":  "scrape_start",
	})

	session, err := s.newSession(ctx, &s.config.Capture, s.logger)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	ui.PrintHighlight("[CAPTURING TIMELINE]")

	incomplete, captureErr := s.captureTimeline(ctx, session, store, handle, opts.Limit)
	interrupted := false
	if captureErr != nil {
		// With nothing on disk there is nothing to reconcile, so the
		// failure is the result. Otherwise finish the pipeline on what
		// was captured.
		if len(store.ListBatches()) == 0 {
			return nil, captureErr
		}
		interrupted = true
		s.logger.WithError(captureErr).Warn("Timeline capture ended early, reconciling what was captured")
		ui.PrintWarning("Timeline capture ended early", captureErr.Error())
	}

	var fetched, skipped, failed int
	if opts.SkipBackfill {
		if len(incomplete) > 0 {
			s.logger.InfoWithFields("Backfill skipped by request", map[string]interface{}{
				"handle":             handle,
				"incomplete_threads": len(incomplete),
			})
		}
	} else if len(incomplete) > 0 && ctx.Err() == nil {
		fetched, skipped, failed = s.backfillThreads(session, store, handle, incomplete)
	}

	ui.PrintHighlight("[RECONCILING CORPUS]")
	corpus, corpusPath, err := s.assembleCorpus(store, handle)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Handle:         handle,
		Posts:          len(corpus),
		BatchUnits:     len(store.ListBatches()),
		ThreadUnits:    len(store.ListThreadDetails()),
		ThreadsFetched: fetched,
		ThreadsSkipped: skipped,
		ThreadsFailed:  failed,
		CorpusPath:     corpusPath,
		Duration:       time.Since(start),
		Interrupted:    interrupted,
	}
	s.writeManifest(runDir, start, summary)

	s.logger.InfoWithFields("Scrape completed", map[string]interface{}{
		"handle":   handle,
		"posts":    summary.Posts,
		"duration": summary.Duration,
		"action":   "scrape_complete",
	})

	return summary, nil
}

// Reconcile rebuilds the corpus from the units already on disk without
// touching the network
func (s *Scraper) Reconcile(handle string) (*Summary, error) {
	start := time.Now()

	runDir := s.runDir(handle)
	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("no capture units found for @%s under %s", handle, s.config.Output.BaseDirectory)
	}

	store, err := storage.Open(runDir)
	if err != nil {
		return nil, err
	}

	corpus, corpusPath, err := s.assembleCorpus(store, handle)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Handle:      handle,
		Posts:       len(corpus),
		BatchUnits:  len(store.ListBatches()),
		ThreadUnits: len(store.ListThreadDetails()),
		CorpusPath:  corpusPath,
		Duration:    time.Since(start),
	}

	// The rebuilt corpus supersedes whatever the manifest recorded about
	// the previous one. Capture timestamps and backfill counts stay.
	if metadata.Exists(runDir) {
		manifest, err := metadata.Load(runDir)
		if err != nil {
			s.logger.WithError(err).Warn("Unreadable run manifest left as is")
		} else {
			manifest.Posts = summary.Posts
			manifest.CorpusPath = corpusPath
			manifest.BatchUnits = summary.BatchUnits
			manifest.ThreadUnits = summary.ThreadUnits
			if err := manifest.Save(runDir); err != nil {
				s.logger.WithError(err).Warn("Failed to update run manifest")
			}
		}
	}

	return summary, nil
}

// captureTimeline drives the browser over the profile and persists every
// batch it yields. It returns the ids of threads the timeline only showed
// partially, in first-seen order.
func (s *Scraper) captureTimeline(ctx context.Context, session Capturer, store *storage.Store, handle string, limit int) ([]string, error) {
	// Posts already on disk must not count as new again on resume.
	seen := make(map[string]bool)
	for _, unit := range store.ListBatches() {
		records, err := store.LoadBatch(unit)
		if err != nil {
			s.logger.WithError(err).WithField("seq", unit.Seq).Warn("Unreadable batch unit ignored for dedupe")
			continue
		}
		for _, rec := range records {
			seen[rec.ID] = true
		}
	}

	incomplete := make(map[string]bool)
	var incompleteOrder []string
	captured := 0

	handler := func(body []byte) (int, error) {
		result, err := twitter.ParseTimeline(body)
		if err != nil {
			return 0, err
		}

		fresh := 0
		for _, post := range result.Posts {
			if !seen[post.ID] {
				seen[post.ID] = true
				fresh++
			}
		}

		for _, threadID := range result.IncompleteThreads {
			if !incomplete[threadID] {
				incomplete[threadID] = true
				incompleteOrder = append(incompleteOrder, threadID)
			}
		}

		if len(result.Posts) == 0 {
			return 0, nil
		}

		unit, err := store.AppendBatch(result.Posts)
		if err != nil {
			return 0, err
		}
		if s.config.Output.KeepRaw {
			if err := store.SaveRaw(unit.Seq, body); err != nil {
				s.logger.WithError(err).WithField("seq", unit.Seq).Warn("Failed to archive raw response")
			}
		}

		fields := result.Report.Fields()
		fields["seq"] = unit.Seq
		fields["new_posts"] = fresh
		s.logger.InfoWithFields("Timeline batch stored", fields)

		captured += fresh
		logger.LogScrapeProgress(handle, captured, limit)

		return fresh, nil
	}

	err := session.CaptureTimeline(ctx, handle, limit, handler)
	return incompleteOrder, err
}

// backfillThreads fetches the full conversation for every listed thread
// through the worker pool, sharing the scraper's rate limiter
func (s *Scraper) backfillThreads(session Capturer, store *storage.Store, handle string, threadIDs []string) (fetched, skipped, failed int) {
	ui.PrintHighlight(fmt.Sprintf("[BACKFILLING %d THREADS]", len(threadIDs)))

	pool := backfill.NewWorkerPool(&s.config.Backfill, session, store, s.rateLimiter, s.logger)
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range pool.Results() {
			switch {
			case result.Skipped:
				skipped++
				logger.LogThreadFetch(handle, result.Job.ThreadID, false, nil)
			case result.Success:
				fetched++
				logger.LogThreadFetch(handle, result.Job.ThreadID, true, nil)
			default:
				failed++
				logger.LogThreadFetch(handle, result.Job.ThreadID, false, result.Error)
			}
		}
	}()

	for _, threadID := range threadIDs {
		if err := pool.Submit(backfill.Job{ThreadID: threadID}); err != nil {
			s.logger.WithError(err).Warn("Backfill submission stopped")
			break
		}
	}

	pool.Stop()
	wg.Wait()

	s.logger.InfoWithFields("Backfill finished", map[string]interface{}{
		"handle":  handle,
		"fetched": fetched,
		"skipped": skipped,
		"failed":  failed,
	})

	return fetched, skipped, failed
}

// assembleCorpus loads every unit the store knows about, reconciles them,
// and writes the corpus file. Unreadable units are logged and skipped so
// one corrupt file never loses the rest of the scrape.
func (s *Scraper) assembleCorpus(store *storage.Store, handle string) ([]models.PostRecord, string, error) {
	var batches []reconcile.Batch
	for _, unit := range store.ListBatches() {
		records, err := store.LoadBatch(unit)
		if err != nil {
			s.logger.WithError(err).WithField("seq", unit.Seq).Warn("Skipping unreadable batch unit")
			continue
		}
		batches = append(batches, reconcile.Batch{Seq: unit.Seq, Records: records})
	}

	var details []reconcile.ThreadDetail
	for _, unit := range store.ListThreadDetails() {
		records, err := store.LoadThreadDetail(unit)
		if err != nil {
			s.logger.WithError(err).WithField("thread_id", unit.ThreadID).Warn("Skipping unreadable thread unit")
			continue
		}
		details = append(details, reconcile.ThreadDetail{ThreadID: unit.ThreadID, Records: records})
	}

	corpus := reconcile.Reconcile(batches, details)

	corpusPath, err := store.WriteCorpus(corpus, handle)
	if err != nil {
		return nil, "", err
	}

	s.logger.InfoWithFields("Corpus written", map[string]interface{}{
		"path":    corpusPath,
		"posts":   len(corpus),
		"batches": len(batches),
		"threads": len(details),
	})

	return corpus, corpusPath, nil
}

func (s *Scraper) writeManifest(runDir string, start time.Time, summary *Summary) {
	manifest := &metadata.RunManifest{
		Handle:         summary.Handle,
		StartedAt:      start,
		FinishedAt:     time.Now(),
		BatchUnits:     summary.BatchUnits,
		ThreadUnits:    summary.ThreadUnits,
		Interrupted:    summary.Interrupted,
		ThreadsFetched: summary.ThreadsFetched,
		ThreadsSkipped: summary.ThreadsSkipped,
		ThreadsFailed:  summary.ThreadsFailed,
		Posts:          summary.Posts,
		CorpusPath:     summary.CorpusPath,
	}

	if err := manifest.Save(runDir); err != nil {
		s.logger.WithError(err).Warn("Failed to write run manifest")
	}
}
