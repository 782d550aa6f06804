// Package scraper provides the core pipeline for archiving an X profile.
//
// The scraper package orchestrates the entire run, coordinating the
// browser capture session, the batch store, the thread backfill pool,
// and the final reconciliation into one corpus file.
//
// Architecture:
//
// The Scraper struct is the main component that:
//   - Opens the run directory and resumes on top of earlier units
//   - Drives the browser over the profile and persists every batch
//   - Backfills threads the timeline only showed partially
//   - Reconciles all units into a single corpus file
//   - Records a manifest of what the run produced
//
// Usage:
//
//	cfg := config.DefaultConfig()
//	cfg.Output.BaseDirectory = "./scrapes"
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := s.Scrape(ctx, "somehandle", scraper.Options{Limit: 200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(summary.CorpusPath)
//
// Resuming:
//
// Every batch and backfilled thread is persisted as its own unit the
// moment it arrives. A second run over the same handle reuses those
// units: already-captured posts do not count against the limit, and
// already-backfilled threads are not fetched again. Options.Fresh
// discards the units instead and starts over.
//
// Rate Limiting:
//
// Thread backfill requests share one token bucket across all workers,
// sized by the rate limit configuration. The capture phase is paced by
// the scroll cadence instead and never consults the bucket.
package scraper
