package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"xscraper/pkg/scraper"
	"xscraper/pkg/ui"
)

var reconcileOutput string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <handle>",
	Short: "Rebuild the corpus from units already on disk",
	Long: `Reconcile reads the batch and thread units a previous scrape left
behind and rebuilds the corpus file without touching the network. Useful
after an interrupted run, or to regenerate the corpus after deleting a
bad unit by hand.`,
	Example: `  # Rebuild the corpus for a previously scraped profile
  xscraper reconcile jack

  # Units live under a non-default output directory
  xscraper reconcile jack --output /data/scrapes`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileOutput, "output", "o", "", "base output directory")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	handle := normalizeHandle(args[0])
	if handle == "" {
		return fmt.Errorf("invalid handle %q", args[0])
	}

	flags := make(map[string]interface{})
	if reconcileOutput != "" {
		flags["output"] = reconcileOutput
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	s, err := scraper.New(cfg)
	if err != nil {
		return err
	}

	summary, err := s.Reconcile(handle)
	if err != nil {
		return err
	}

	ui.PrintSuccess("[CORPUS REBUILT]")
	ui.PrintInfo("Posts", strconv.Itoa(summary.Posts))
	ui.PrintInfo("Corpus", summary.CorpusPath)

	return nil
}
