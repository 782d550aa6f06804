package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// manifestFile is the name the manifest is stored under inside a run
// directory. The storage layer scans that directory by unit suffix, so
// this name never collides with a capture unit.
const manifestFile = "manifest.json"

// RunManifest records what a scrape run produced
type RunManifest struct {
	// Core identifiers
	Handle string `json:"handle"`

	// Timestamps
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Capture results
	BatchUnits  int  `json:"batch_units"`
	ThreadUnits int  `json:"thread_units"`
	Interrupted bool `json:"interrupted,omitempty"`

	// Backfill results
	ThreadsFetched int `json:"threads_fetched"`
	ThreadsSkipped int `json:"threads_skipped"`
	ThreadsFailed  int `json:"threads_failed"`

	// Corpus
	Posts      int    `json:"posts"`
	CorpusPath string `json:"corpus_path"`
}

// Save writes the manifest to its JSON file in the run directory
func (m *RunManifest) Save(runDir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Join(runDir, manifestFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// Load reads the manifest from a run directory
func Load(runDir string) (*RunManifest, error) {
	data, err := os.ReadFile(filepath.Join(runDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &m, nil
}

// Exists checks if a run directory already carries a manifest
func Exists(runDir string) bool {
	_, err := os.Stat(filepath.Join(runDir, manifestFile))
	return err == nil
}
