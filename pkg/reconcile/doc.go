// Package reconcile turns many partial, possibly overlapping capture units
// into one canonical post corpus.
//
// The merge is keyed by post id with explicit precedence: timeline batches
// first (more complete duplicates win, then later batches), thread-detail
// units second (always authoritative for their posts). Grouped records are
// bucketed by thread id, sorted oldest first, and nested under their root
// when the root was captured; members of a rootless bucket join the corpus
// individually, since the engine never fabricates posts. The finished
// corpus is ordered newest first, the way a feed reads, while each thread's
// replies stay in posting order.
//
// Reconcile is deterministic for a given unit set and tolerates duplicate
// units, which is what allows interrupted capture runs to be re-run and
// merged safely.
package reconcile
