package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"xscraper/pkg/logger"
	"xscraper/pkg/scraper"
	"xscraper/pkg/ui"
)

var (
	scrapeLimit        int
	scrapeOutput       string
	scrapeHeadless     bool
	scrapeProfileDir   string
	scrapeWorkers      int
	scrapeKeepRaw      bool
	scrapeSkipBackfill bool
	scrapeFresh        bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <handle>",
	Short: "Capture a profile's timeline and assemble its corpus",
	Long: `Scrape opens the profile in a browser, scrolls until the timeline
stops yielding new posts (or the limit is reached), backfills threads the
timeline only showed partially, and writes the reconciled corpus.

The browser profile must already be signed in to X. Run once without
--headless, log in when the window appears, and later runs will reuse
the session.`,
	Example: `  # Scrape an entire timeline
  xscraper scrape jack

  # Stop after roughly 200 posts, keeping the raw responses
  xscraper scrape jack --limit 200 --keep-raw

  # Continue an interrupted run headlessly
  xscraper scrape jack --headless

  # Ignore earlier runs and start over
  xscraper scrape jack --fresh`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "stop after roughly this many posts (0 scrapes the entire timeline)")
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "base output directory")
	scrapeCmd.Flags().BoolVar(&scrapeHeadless, "headless", false, "run the browser without a window")
	scrapeCmd.Flags().StringVar(&scrapeProfileDir, "profile-dir", "", "browser user data directory holding the login session")
	scrapeCmd.Flags().IntVar(&scrapeWorkers, "workers", 0, "thread backfill worker count")
	scrapeCmd.Flags().BoolVar(&scrapeKeepRaw, "keep-raw", false, "keep raw response bodies alongside parsed batches")
	scrapeCmd.Flags().BoolVar(&scrapeSkipBackfill, "skip-backfill", false, "skip fetching full threads for incomplete modules")
	scrapeCmd.Flags().BoolVar(&scrapeFresh, "fresh", false, "discard units from earlier runs and start over")
}

func runScrape(cmd *cobra.Command, args []string) error {
	handle := normalizeHandle(args[0])
	if handle == "" {
		return fmt.Errorf("invalid handle %q", args[0])
	}

	// Build flags map from command line
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("headless") {
		flags["headless"] = scrapeHeadless
	}
	if scrapeProfileDir != "" {
		flags["profile-dir"] = scrapeProfileDir
	}
	if scrapeWorkers > 0 {
		flags["workers"] = scrapeWorkers
	}
	if scrapeOutput != "" {
		flags["output"] = scrapeOutput
	}
	if scrapeKeepRaw {
		flags["keep-raw"] = true
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if cfg.Capture.UserDataDir == "" {
		cfg.Capture.UserDataDir = defaultProfileDir()
	}

	ui.PrintLogo()
	ui.PrintInfo("Target Profile", "@"+handle)

	logger.WithField("version", version).Info("xscraper starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg)
	if err != nil {
		return err
	}

	summary, err := s.Scrape(ctx, handle, scraper.Options{
		Limit:        scrapeLimit,
		Fresh:        scrapeFresh,
		SkipBackfill: scrapeSkipBackfill,
	})
	if err != nil {
		logger.GetLogger().WithError(err).WithField("handle", handle).Error("Scrape failed")
		return err
	}

	ui.PrintSuccess("[SCRAPE COMPLETED]")
	ui.PrintInfo("Posts", strconv.Itoa(summary.Posts))
	ui.PrintInfo("Threads backfilled", strconv.Itoa(summary.ThreadsFetched))
	if summary.ThreadsFailed > 0 {
		ui.PrintWarning("Threads failed", summary.ThreadsFailed)
	}
	ui.PrintInfo("Corpus", summary.CorpusPath)
	ui.PrintInfo("Duration", summary.Duration.Round(time.Second).String())

	return nil
}
