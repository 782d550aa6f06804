// Package storage persists capture output as durable, individually
// loadable units inside a per-run directory.
//
// The package handles:
//   - Numbered timeline batch units (<n>_api_parsed.json)
//   - Per-thread backfill units (thread_<id>_full.json)
//   - Optional raw response archives (<n>_raw_api.json)
//   - The final corpus (<handle>_mega_scrape.json)
//
// The Store type is the single entry point. It keeps an in-memory manifest
// of the units it knows about, seeded by scanning the run directory on open
// and extended by appends, so reconciliation receives explicit unit lists
// instead of pattern matching over the filesystem. All writes go through a
// temp file and an atomic rename: a unit is either fully present or absent,
// never partial, which is what makes interrupted runs safe to resume.
//
// Usage:
//
//	store, err := storage.Open(runDir)
//	if err != nil {
//	    return err
//	}
//	unit, err := store.AppendBatch(records)
//	...
//	for _, u := range store.ListBatches() {
//	    records, err := store.LoadBatch(u)
//	    ...
//	}
package storage
