package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xscraper/pkg/models"
)

func testRecords(ids ...string) []models.PostRecord {
	records := make([]models.PostRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, models.PostRecord{
			ID:        id,
			CreatedAt: "Mon Jan 06 08:00:00 +0000 2025",
			Text:      "post " + id,
		})
	}
	return records
}

func TestStoreAppendBatchAndReload(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	unit, err := store.AppendBatch(testRecords("1", "2"))
	if err != nil {
		t.Fatalf("Failed to append batch: %v", err)
	}
	if unit.Seq != 1 {
		t.Errorf("Expected first batch to be sequence 1, got %d", unit.Seq)
	}
	if filepath.Base(unit.Path) != "1_api_parsed.json" {
		t.Errorf("Unexpected batch file name: %s", filepath.Base(unit.Path))
	}
	if _, err := os.Stat(unit.Path); err != nil {
		t.Fatalf("Batch file missing: %v", err)
	}

	loaded, err := store.LoadBatch(unit)
	if err != nil {
		t.Fatalf("Failed to load batch: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "1" || loaded[1].ID != "2" {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}

	units := store.ListBatches()
	if len(units) != 1 || units[0].Seq != 1 {
		t.Errorf("Unexpected batch listing: %+v", units)
	}
}

func TestStoreSequenceContinuesAfterReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := store.AppendBatch(testRecords("a")); err != nil {
			t.Fatalf("Failed to append batch: %v", err)
		}
	}

	// A fresh store over the same directory must resume, not restart.
	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	if got := reopened.NextBatchSeq(); got != 3 {
		t.Errorf("Expected next sequence 3 after reopen, got %d", got)
	}

	unit, err := reopened.AppendBatch(testRecords("b"))
	if err != nil {
		t.Fatalf("Failed to append after reopen: %v", err)
	}
	if unit.Seq != 3 {
		t.Errorf("Expected sequence 3, got %d", unit.Seq)
	}
	if len(reopened.ListBatches()) != 3 {
		t.Errorf("Expected 3 batches listed, got %d", len(reopened.ListBatches()))
	}
}

func TestStoreThreadDetailTagsRecords(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	records := testRecords("42", "43")
	records[1].ThreadID = "7" // pre-tagged records keep their id

	unit, err := store.AppendThreadDetail("42", records)
	if err != nil {
		t.Fatalf("Failed to append thread detail: %v", err)
	}
	if filepath.Base(unit.Path) != "thread_42_full.json" {
		t.Errorf("Unexpected thread file name: %s", filepath.Base(unit.Path))
	}

	loaded, err := store.LoadThreadDetail(unit)
	if err != nil {
		t.Fatalf("Failed to load thread detail: %v", err)
	}
	if loaded[0].ThreadID != "42" || !loaded[0].IsThread {
		t.Errorf("Untagged record was not tagged: %+v", loaded[0])
	}
	if loaded[1].ThreadID != "7" {
		t.Errorf("Pre-tagged record must keep its thread id, got %q", loaded[1].ThreadID)
	}

	if !store.HasThreadDetail("42") {
		t.Error("Expected HasThreadDetail to report the appended thread")
	}
	if store.HasThreadDetail("999") {
		t.Error("Unexpected thread detail reported")
	}
}

func TestStoreThreadDetailRequiresID(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if _, err := store.AppendThreadDetail("", testRecords("1")); err == nil {
		t.Fatal("Expected error for empty thread id")
	}
}

func TestStoreScanKnowsExistingThreads(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if _, err := store.AppendThreadDetail("100", testRecords("100", "101")); err != nil {
		t.Fatalf("Failed to append thread detail: %v", err)
	}
	if _, err := store.AppendThreadDetail("50", testRecords("50")); err != nil {
		t.Fatalf("Failed to append thread detail: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	if !reopened.HasThreadDetail("100") {
		t.Error("Reopened store lost a thread detail unit")
	}

	units := reopened.ListThreadDetails()
	if len(units) != 2 {
		t.Fatalf("Expected 2 thread units, got %d", len(units))
	}
	if units[0].ThreadID != "100" || units[1].ThreadID != "50" {
		t.Errorf("Thread units not ordered by id: %+v", units)
	}
}

func TestStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"notes.txt",
		"x_api_parsed.json",      // non-numeric sequence
		"thread__full.json",      // empty thread id
		"3_api_parsed.json.tmp",  // leftover temp file
		"ada_mega_scrape.json",   // previous corpus
		"0_api_parsed.json",      // sequences start at 1
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0644); err != nil {
			t.Fatalf("Failed to seed file %s: %v", name, err)
		}
	}

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if len(store.ListBatches()) != 0 {
		t.Errorf("Foreign files indexed as batches: %+v", store.ListBatches())
	}
	if len(store.ListThreadDetails()) != 0 {
		t.Errorf("Foreign files indexed as threads: %+v", store.ListThreadDetails())
	}
	if store.NextBatchSeq() != 1 {
		t.Errorf("Expected next sequence 1, got %d", store.NextBatchSeq())
	}
}

func TestStoreWriteCorpusOverwrites(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	path, err := store.WriteCorpus(testRecords("1"), "ada")
	if err != nil {
		t.Fatalf("Failed to write corpus: %v", err)
	}
	if filepath.Base(path) != "ada_mega_scrape.json" {
		t.Errorf("Unexpected corpus name: %s", filepath.Base(path))
	}

	// A second run is authoritative for the same handle.
	if _, err := store.WriteCorpus(testRecords("9"), "ada"); err != nil {
		t.Fatalf("Failed to overwrite corpus: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read corpus: %v", err)
	}
	if !strings.Contains(string(content), `"id": "9"`) || strings.Contains(string(content), `"id": "1"`) {
		t.Errorf("Corpus was not overwritten: %s", content)
	}
}

func TestStoreSaveRawArchivesBody(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	body := []byte(`{"data": {"user": {}}}`)
	if err := store.SaveRaw(1, body); err != nil {
		t.Fatalf("Failed to save raw body: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(store.Dir(), "1_raw_api.json"))
	if err != nil {
		t.Fatalf("Failed to read raw archive: %v", err)
	}
	if string(content) != string(body) {
		t.Errorf("Raw body altered: %s", content)
	}
}
