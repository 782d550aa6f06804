package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"xscraper/pkg/errors"
	"xscraper/pkg/models"
)

// Unit names are part of the on-disk format: batch units carry their
// sequence number, thread units their thread id, so the association is
// recoverable from the name alone.
const (
	batchSuffix  = "_api_parsed.json"
	rawSuffix    = "_raw_api.json"
	threadPrefix = "thread_"
	threadSuffix = "_full.json"
	corpusSuffix = "_mega_scrape.json"
)

// BatchUnit identifies one persisted timeline batch.
type BatchUnit struct {
	Seq  int
	Path string
}

// ThreadUnit identifies one persisted backfilled thread.
type ThreadUnit struct {
	ThreadID string
	Path     string
}

// Store persists capture output as individually loadable JSON units inside
// one run directory. Units are written atomically (temp file plus rename),
// so a crash leaves either a complete unit or none. Opening a store scans
// the directory, which is what makes interrupted runs resumable: sequence
// numbering continues past the highest existing batch and already
// backfilled threads are known.
type Store struct {
	dir string

	mu      sync.RWMutex
	batches map[int]string    // seq -> path
	threads map[string]string // thread id -> path
	nextSeq int
}

// Open creates the run directory if needed and indexes any units already
// present in it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "creating run directory")
	}

	s := &Store{
		dir:     dir,
		batches: make(map[int]string),
		threads: make(map[string]string),
		nextSeq: 1,
	}
	if err := s.scanExistingUnits(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) scanExistingUnits() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeStorage, "reading run directory")
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, batchSuffix):
			seq, err := strconv.Atoi(strings.TrimSuffix(name, batchSuffix))
			if err != nil || seq < 1 {
				continue
			}
			s.batches[seq] = filepath.Join(s.dir, name)
			if seq >= s.nextSeq {
				s.nextSeq = seq + 1
			}
		case strings.HasPrefix(name, threadPrefix) && strings.HasSuffix(name, threadSuffix):
			id := strings.TrimSuffix(strings.TrimPrefix(name, threadPrefix), threadSuffix)
			if id == "" {
				continue
			}
			s.threads[id] = filepath.Join(s.dir, name)
		}
	}
	return nil
}

// Dir returns the run directory the store is bound to.
func (s *Store) Dir() string {
	return s.dir
}

// NextBatchSeq returns the sequence number the next batch append will use.
func (s *Store) NextBatchSeq() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextSeq
}

// AppendBatch persists one timeline batch as the next numbered unit. A
// failed write burns its sequence number, which leaves a harmless gap.
func (s *Store) AppendBatch(records []models.PostRecord) (BatchUnit, error) {
	s.mu.Lock()
	seq := s.nextSeq
	s.nextSeq++
	s.mu.Unlock()

	path := filepath.Join(s.dir, fmt.Sprintf("%d%s", seq, batchSuffix))
	if err := s.writeJSON(path, records); err != nil {
		return BatchUnit{}, errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("writing batch %d", seq))
	}

	s.mu.Lock()
	s.batches[seq] = path
	s.mu.Unlock()

	return BatchUnit{Seq: seq, Path: path}, nil
}

// AppendThreadDetail persists a backfilled thread's full record set under
// the thread's id. Records that do not yet carry a thread id are tagged
// with it and marked as thread members before writing. Re-appending the
// same thread replaces the previous unit.
func (s *Store) AppendThreadDetail(threadID string, records []models.PostRecord) (ThreadUnit, error) {
	if threadID == "" {
		return ThreadUnit{}, errors.New(errors.ErrorTypeStorage, "thread detail requires a thread id")
	}

	for i := range records {
		if records[i].ThreadID == "" {
			records[i].ThreadID = threadID
			records[i].IsThread = true
		}
	}

	path := filepath.Join(s.dir, threadPrefix+threadID+threadSuffix)
	if err := s.writeJSON(path, records); err != nil {
		return ThreadUnit{}, errors.Wrap(err, errors.ErrorTypeStorage, "writing thread detail "+threadID)
	}

	s.mu.Lock()
	s.threads[threadID] = path
	s.mu.Unlock()

	return ThreadUnit{ThreadID: threadID, Path: path}, nil
}

// HasThreadDetail reports whether a detail unit for the thread already
// exists, letting resumed runs skip the fetch.
func (s *Store) HasThreadDetail(threadID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.threads[threadID]
	return ok
}

// ListBatches enumerates persisted batch units in sequence order.
func (s *Store) ListBatches() []BatchUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	units := make([]BatchUnit, 0, len(s.batches))
	for seq, path := range s.batches {
		units = append(units, BatchUnit{Seq: seq, Path: path})
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Seq < units[j].Seq })
	return units
}

// ListThreadDetails enumerates persisted thread units ordered by thread id.
func (s *Store) ListThreadDetails() []ThreadUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	units := make([]ThreadUnit, 0, len(s.threads))
	for id, path := range s.threads {
		units = append(units, ThreadUnit{ThreadID: id, Path: path})
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ThreadID < units[j].ThreadID })
	return units
}

// LoadBatch reads one batch unit back.
func (s *Store) LoadBatch(unit BatchUnit) ([]models.PostRecord, error) {
	return s.loadRecords(unit.Path)
}

// LoadThreadDetail reads one thread unit back.
func (s *Store) LoadThreadDetail(unit ThreadUnit) ([]models.PostRecord, error) {
	return s.loadRecords(unit.Path)
}

func (s *Store) loadRecords(path string) ([]models.PostRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "reading unit "+filepath.Base(path))
	}
	var records []models.PostRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "decoding unit "+filepath.Base(path))
	}
	return records, nil
}

// SaveRaw archives an untouched response body next to its parsed batch so
// a batch can be re-parsed offline.
func (s *Store) SaveRaw(seq int, body []byte) error {
	path := filepath.Join(s.dir, fmt.Sprintf("%d%s", seq, rawSuffix))
	if err := atomicWrite(path, body); err != nil {
		return errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("archiving raw response %d", seq))
	}
	return nil
}

// WriteCorpus serializes the final ordered corpus for the handle,
// overwriting any previous corpus from an earlier run.
func (s *Store) WriteCorpus(corpus []models.PostRecord, handle string) (string, error) {
	path := filepath.Join(s.dir, handle+corpusSuffix)
	if err := s.writeJSON(path, corpus); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeStorage, "writing corpus for "+handle)
	}
	return path, nil
}

// writeJSON marshals v into path atomically: encode to a temp file, sync,
// then rename over the destination.
func (s *Store) writeJSON(path string, v interface{}) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("syncing: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}
