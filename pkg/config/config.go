package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the scraper
type Config struct {
	// Browser capture settings
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// Thread backfill settings
	Backfill BackfillConfig `yaml:"backfill" json:"backfill"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CaptureConfig holds browser session configuration
type CaptureConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	UserDataDir       string        `yaml:"user_data_dir" json:"user_data_dir"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	ScrollMinPixels   int           `yaml:"scroll_min_pixels" json:"scroll_min_pixels"`
	ScrollMaxPixels   int           `yaml:"scroll_max_pixels" json:"scroll_max_pixels"`
	PauseMin          time.Duration `yaml:"pause_min" json:"pause_min"`
	PauseMax          time.Duration `yaml:"pause_max" json:"pause_max"`
	StallLimit        int           `yaml:"stall_limit" json:"stall_limit"`
}

// BackfillConfig holds thread backfill worker configuration
type BackfillConfig struct {
	Workers      int           `yaml:"workers" json:"workers"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay   time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	KeepRaw       bool   `yaml:"keep_raw" json:"keep_raw"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			Headless:          false,
			UserDataDir:       "",
			UserAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			NavigationTimeout: 45 * time.Second,
			ScrollMinPixels:   500,
			ScrollMaxPixels:   800,
			PauseMin:          2 * time.Second,
			PauseMax:          4 * time.Second,
			StallLimit:        15,
		},
		Backfill: BackfillConfig{
			Workers:      2,
			FetchTimeout: 30 * time.Second,
			MaxRetries:   3,
			RetryDelay:   5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         5,
		},
		Output: OutputConfig{
			BaseDirectory: "./scrapes",
			KeepRaw:       false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if headless := os.Getenv("XSCRAPER_HEADLESS"); headless != "" {
		c.Capture.Headless = strings.ToLower(headless) == "true"
	}
	if profileDir := os.Getenv("XSCRAPER_PROFILE_DIR"); profileDir != "" {
		c.Capture.UserDataDir = profileDir
	}
	if userAgent := os.Getenv("XSCRAPER_USER_AGENT"); userAgent != "" {
		c.Capture.UserAgent = userAgent
	}

	if workers := os.Getenv("XSCRAPER_WORKERS"); workers != "" {
		if val, err := strconv.Atoi(workers); err == nil && val > 0 {
			c.Backfill.Workers = val
		}
	}

	if rpm := os.Getenv("XSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		if val, err := strconv.Atoi(rpm); err == nil && val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if outputDir := os.Getenv("XSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if keepRaw := os.Getenv("XSCRAPER_KEEP_RAW"); keepRaw != "" {
		c.Output.KeepRaw = strings.ToLower(keepRaw) == "true"
	}

	if logLevel := os.Getenv("XSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("XSCRAPER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		"xscraper.yaml",
		"xscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".xscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// DefaultConfigPath returns the standard location for a saved config file
func DefaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yaml")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Validate capture settings
	if c.Capture.ScrollMinPixels <= 0 {
		errs = append(errs, errors.New("scroll min pixels must be positive"))
	}
	if c.Capture.ScrollMaxPixels < c.Capture.ScrollMinPixels {
		errs = append(errs, errors.New("scroll max pixels must not be below the minimum"))
	}
	if c.Capture.PauseMin <= 0 {
		errs = append(errs, errors.New("pause min must be positive"))
	}
	if c.Capture.PauseMax < c.Capture.PauseMin {
		errs = append(errs, errors.New("pause max must not be below the minimum"))
	}
	if c.Capture.StallLimit <= 0 {
		errs = append(errs, errors.New("stall limit must be positive"))
	}

	// Validate backfill settings
	if c.Backfill.Workers <= 0 {
		errs = append(errs, errors.New("backfill workers must be positive"))
	}
	if c.Backfill.Workers > 8 {
		errs = append(errs, errors.New("backfill workers should not exceed 8"))
	}
	if c.Backfill.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Backfill.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	// Validate rate limiting
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	// Validate output settings
	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if headless, ok := flags["headless"].(bool); ok {
		c.Capture.Headless = headless
	}
	if profileDir, ok := flags["profile-dir"].(string); ok && profileDir != "" {
		c.Capture.UserDataDir = profileDir
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Backfill.Workers = workers
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if keepRaw, ok := flags["keep-raw"].(bool); ok && keepRaw {
		c.Output.KeepRaw = true
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
