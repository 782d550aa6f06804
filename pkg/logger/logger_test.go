package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithValidLevels(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error"}
	for _, level := range levels {
		t.Run(level, func(t *testing.T) {
			l, err := New(Config{Level: level, Pretty: true})
			if err != nil {
				t.Fatalf("New(%q) returned error: %v", level, err)
			}
			if l == nil {
				t.Fatalf("New(%q) returned nil logger", level)
			}
		})
	}
}

func TestNewWithInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "verbose"})
	if err == nil {
		t.Fatal("expected error for invalid level, got nil")
	}
	if !strings.Contains(err.Error(), "verbose") {
		t.Errorf("error should name the bad level, got: %v", err)
	}
}

func TestNewWithLogFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "scrape.log")

	l, err := New(Config{Level: "info", LogFile: logFile})
	if err != nil {
		t.Fatalf("New with log file returned error: %v", err)
	}

	l.InfoWithFields("file output test", map[string]interface{}{
		"handle": "testuser",
		"posts":  42,
	})

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "file output test") {
		t.Errorf("log file missing message, got: %s", content)
	}
	if !strings.Contains(content, `"handle":"testuser"`) {
		t.Errorf("log file missing structured field, got: %s", content)
	}
	if !strings.Contains(content, `"app":"xscraper"`) {
		t.Errorf("log file missing app field, got: %s", content)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "filtered.log")

	l, err := New(Config{Level: "warn", LogFile: logFile})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	l.Debug("should be dropped")
	l.Info("also dropped")
	l.Warn("kept")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "dropped") {
		t.Errorf("below-threshold entries leaked into output: %s", content)
	}
	if !strings.Contains(content, "kept") {
		t.Errorf("warn entry missing from output: %s", content)
	}
}

func TestDerivedLoggersCarryFields(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "derived.log")

	l, err := New(Config{Level: "debug", LogFile: logFile})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	l.WithField("thread_id", "12345").Info("detail captured")
	l.WithFields(map[string]interface{}{
		"worker": 2,
		"status": "done",
	}).Info("worker exit")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"thread_id":"12345"`) {
		t.Errorf("WithField value missing: %s", content)
	}
	if !strings.Contains(content, `"worker":2`) {
		t.Errorf("WithFields value missing: %s", content)
	}
}

func TestTestLoggerCapturesEntries(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("plain message")
	tl.WithField("seq", 3).Warn("batch retry")
	tl.ErrorWithFields("fetch failed", map[string]interface{}{
		"thread_id": "99",
	})

	entries := tl.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !tl.HasMessage("batch retry") {
		t.Error("HasMessage did not find derived logger entry")
	}
	if entries[1].Fields["seq"] != 3 {
		t.Errorf("derived field not captured: %+v", entries[1].Fields)
	}
	if entries[2].Level != "error" {
		t.Errorf("expected error level, got %q", entries[2].Level)
	}
}

func TestGetLoggerFallsBackToDefault(t *testing.T) {
	saved := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = saved }()

	l := GetLogger()
	if l == nil {
		t.Fatal("GetLogger returned nil without Initialize")
	}
}
