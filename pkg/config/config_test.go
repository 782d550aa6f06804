package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backfill.Workers != 2 {
		t.Errorf("expected 2 backfill workers, got %d", cfg.Backfill.Workers)
	}
	if cfg.Capture.ScrollMinPixels != 500 || cfg.Capture.ScrollMaxPixels != 800 {
		t.Errorf("unexpected scroll range: %d-%d", cfg.Capture.ScrollMinPixels, cfg.Capture.ScrollMaxPixels)
	}
	if cfg.Capture.StallLimit != 15 {
		t.Errorf("expected stall limit 15, got %d", cfg.Capture.StallLimit)
	}
	if cfg.Capture.PauseMin != 2*time.Second || cfg.Capture.PauseMax != 4*time.Second {
		t.Errorf("unexpected pause range: %v-%v", cfg.Capture.PauseMin, cfg.Capture.PauseMax)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected info log level, got %q", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xscraper.yaml")
	content := `
capture:
  headless: true
  stall_limit: 20
backfill:
  workers: 4
output:
  base_directory: /tmp/scrapes
  keep_raw: true
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile returned error: %v", err)
	}

	if !cfg.Capture.Headless {
		t.Error("headless not loaded from file")
	}
	if cfg.Capture.StallLimit != 20 {
		t.Errorf("stall limit not loaded, got %d", cfg.Capture.StallLimit)
	}
	if cfg.Backfill.Workers != 4 {
		t.Errorf("workers not loaded, got %d", cfg.Backfill.Workers)
	}
	if cfg.Output.BaseDirectory != "/tmp/scrapes" {
		t.Errorf("output dir not loaded, got %q", cfg.Output.BaseDirectory)
	}
	if !cfg.Output.KeepRaw {
		t.Error("keep_raw not loaded from file")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level not loaded, got %q", cfg.Logging.Level)
	}

	// Fields absent from the file keep their defaults.
	if cfg.Capture.ScrollMinPixels != 500 {
		t.Errorf("absent field lost its default, got %d", cfg.Capture.ScrollMinPixels)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("capture: [not a map"), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestLoadFromFileMissingPathIsNotError(t *testing.T) {
	cfg := DefaultConfig()
	// Empty path with no config file in any default location just
	// keeps the defaults.
	t.Setenv("HOME", t.TempDir())
	if err := cfg.LoadFromFile(""); err != nil {
		t.Fatalf("empty path should not error, got: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("XSCRAPER_HEADLESS", "true")
	t.Setenv("XSCRAPER_WORKERS", "3")
	t.Setenv("XSCRAPER_OUTPUT_DIR", "/data/x")
	t.Setenv("XSCRAPER_KEEP_RAW", "TRUE")
	t.Setenv("XSCRAPER_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}

	if !cfg.Capture.Headless {
		t.Error("XSCRAPER_HEADLESS not applied")
	}
	if cfg.Backfill.Workers != 3 {
		t.Errorf("XSCRAPER_WORKERS not applied, got %d", cfg.Backfill.Workers)
	}
	if cfg.Output.BaseDirectory != "/data/x" {
		t.Errorf("XSCRAPER_OUTPUT_DIR not applied, got %q", cfg.Output.BaseDirectory)
	}
	if !cfg.Output.KeepRaw {
		t.Error("XSCRAPER_KEEP_RAW not applied case-insensitively")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("XSCRAPER_LOG_LEVEL not applied, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("XSCRAPER_WORKERS", "many")
	t.Setenv("XSCRAPER_REQUESTS_PER_MINUTE", "-5")

	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}

	if cfg.Backfill.Workers != 2 {
		t.Errorf("invalid XSCRAPER_WORKERS should keep default, got %d", cfg.Backfill.Workers)
	}
	if cfg.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("negative rpm should keep default, got %d", cfg.RateLimit.RequestsPerMinute)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Backfill.Workers = 0 },
			wantErr: "workers must be positive",
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Backfill.Workers = 9 },
			wantErr: "should not exceed 8",
		},
		{
			name:    "inverted scroll range",
			mutate:  func(c *Config) { c.Capture.ScrollMaxPixels = 100 },
			wantErr: "scroll max pixels",
		},
		{
			name:    "inverted pause range",
			mutate:  func(c *Config) { c.Capture.PauseMax = time.Second },
			wantErr: "pause max",
		},
		{
			name:    "zero stall limit",
			mutate:  func(c *Config) { c.Capture.StallLimit = 0 },
			wantErr: "stall limit",
		},
		{
			name:    "empty output directory",
			mutate:  func(c *Config) { c.Output.BaseDirectory = "" },
			wantErr: "output directory",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "invalid log level",
		},
		{
			name:    "zero requests per minute",
			mutate:  func(c *Config) { c.RateLimit.RequestsPerMinute = 0 },
			wantErr: "requests per minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"headless":    true,
		"profile-dir": "/home/u/.config/xscraper/profile",
		"workers":     4,
		"output":      "/data/out",
		"log-level":   "debug",
	})

	if !cfg.Capture.Headless {
		t.Error("headless flag not merged")
	}
	if cfg.Capture.UserDataDir != "/home/u/.config/xscraper/profile" {
		t.Errorf("profile-dir flag not merged, got %q", cfg.Capture.UserDataDir)
	}
	if cfg.Backfill.Workers != 4 {
		t.Errorf("workers flag not merged, got %d", cfg.Backfill.Workers)
	}
	if cfg.Output.BaseDirectory != "/data/out" {
		t.Errorf("output flag not merged, got %q", cfg.Output.BaseDirectory)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log-level flag not merged, got %q", cfg.Logging.Level)
	}
}

func TestLoadPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := t.TempDir()
	path := filepath.Join(dir, "xscraper.yaml")
	content := `
backfill:
  workers: 4
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	// Env beats file, flags beat env.
	t.Setenv("XSCRAPER_WORKERS", "5")
	t.Setenv("XSCRAPER_LOG_LEVEL", "warn")

	cfg, err := Load(path, map[string]interface{}{"log-level": "error"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Backfill.Workers != 5 {
		t.Errorf("env should override file, got workers=%d", cfg.Backfill.Workers)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("flag should override env, got level=%q", cfg.Logging.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Backfill.Workers = 6
	cfg.Output.BaseDirectory = "/srv/scrapes"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile returned error: %v", err)
	}

	if loaded.Backfill.Workers != 6 {
		t.Errorf("workers not round-tripped, got %d", loaded.Backfill.Workers)
	}
	if loaded.Output.BaseDirectory != "/srv/scrapes" {
		t.Errorf("output dir not round-tripped, got %q", loaded.Output.BaseDirectory)
	}
}
