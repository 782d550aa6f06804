package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"xscraper/pkg/config"
	"xscraper/pkg/logger"
	"xscraper/pkg/ui"
)

var (
	// Version information, overridden at build time via ldflags
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	quietMode bool
)

var rootCmd = &cobra.Command{
	Use:   "xscraper",
	Short: "Archive X profiles into a single reconciled JSON corpus",
	Long: `xscraper drives a real browser over an X profile, records the
platform's own timeline responses, backfills threads that the timeline
only showed partially, and reconciles everything into one corpus file
with replies nested under their thread roots.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("COMMAND FAILED", err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is xscraper.yaml or $HOME/.config/xscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "suppress decorative output")

	rootCmd.SetVersionTemplate(`xscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("xscraper %s (commit: %s, built: %s)\n", version, gitCommit, buildDate)
	},
}

// loadConfig assembles the effective configuration and initializes the
// logger and terminal output for a command run.
func loadConfig(extra map[string]interface{}) (*config.Config, error) {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	for k, v := range extra {
		flags[k] = v
	}

	cfg, err := config.Load(cfgFile, flags)
	if err != nil {
		return nil, err
	}

	ui.SetQuiet(quietMode)

	if err := logger.Initialize(logger.Config{
		Level:   cfg.Logging.Level,
		Pretty:  true,
		LogFile: cfg.Logging.File,
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalizeHandle strips the decorations people paste along with a handle.
func normalizeHandle(raw string) string {
	handle := strings.TrimSpace(raw)
	handle = strings.TrimPrefix(handle, "@")
	handle = strings.TrimSuffix(handle, "/")
	if i := strings.LastIndex(handle, "/"); i >= 0 {
		// Accept full profile URLs like https://x.com/somebody
		handle = handle[i+1:]
	}
	return handle
}

// defaultProfileDir is where the browser keeps its login session when no
// profile directory was configured.
func defaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xscraper-profile"
	}
	return filepath.Join(home, ".config", "xscraper", "profile")
}
