package reconcile

import (
	"sort"

	"github.com/samber/lo"

	"xscraper/pkg/models"
)

// Batch is one timeline batch together with its sequence number. The
// sequence makes the duplicate-id tie-break between batches deterministic.
type Batch struct {
	Seq     int
	Records []models.PostRecord
}

// ThreadDetail is one backfilled thread's full record set.
type ThreadDetail struct {
	ThreadID string
	Records  []models.PostRecord
}

// Reconcile merges every batch and thread-detail unit into a deduplicated,
// thread-nested corpus ordered newest first. The result depends only on the
// set of units, not on the order they are passed in: batches merge in
// sequence order, details overlay in thread-id order, and the final sort
// breaks timestamp ties by id.
//
// Records without an id are dropped. Malformed timestamps never fail a
// comparison; they carry the minimum instant and sort to the end of the
// corpus.
func Reconcile(batches []Batch, details []ThreadDetail) []models.PostRecord {
	byID := make(map[string]models.PostRecord)

	for _, batch := range sortedBatches(batches) {
		for _, rec := range batch.Records {
			if rec.ID == "" {
				continue
			}
			rec.Thread = nil // nesting belongs to this pass alone
			if existing, ok := byID[rec.ID]; ok {
				rec = mergeTimeline(existing, rec)
			}
			byID[rec.ID] = rec
		}
	}

	// Thread details are authoritative for the posts they contain.
	for _, detail := range sortedDetails(details) {
		for _, rec := range detail.Records {
			if rec.ID == "" {
				continue
			}
			rec.Thread = nil
			if rec.ThreadID == "" {
				rec.ThreadID = detail.ThreadID
				rec.IsThread = true
			}
			if existing, ok := byID[rec.ID]; ok {
				rec = overlay(existing, rec)
			}
			byID[rec.ID] = rec
		}
	}

	standalone, groups := partition(byID)

	for _, threadID := range sortedKeys(groups) {
		members := groups[threadID]
		sortAscending(members)

		_, rootIdx, found := lo.FindIndexOf(members, func(r models.PostRecord) bool {
			return r.ID == threadID
		})
		if !found {
			// The root was never captured. The members stand alone; a
			// synthetic root is never fabricated.
			standalone = append(standalone, members...)
			continue
		}

		root := members[rootIdx]
		replies := make([]models.PostRecord, 0, len(members)-1)
		replies = append(replies, members[:rootIdx]...)
		replies = append(replies, members[rootIdx+1:]...)
		if len(replies) > 0 {
			root.Thread = replies
		}
		standalone = append(standalone, root)
	}

	sortDescending(standalone)
	return standalone
}

// mergeTimeline resolves a duplicate id between two timeline batches. The
// more complete record wins; equal completeness goes to the later batch.
// Thread linkage from the losing record survives when the winner lacks it,
// and a thread mark is never unset.
func mergeTimeline(existing, incoming models.PostRecord) models.PostRecord {
	winner, loser := incoming, existing
	if completeness(existing) > completeness(incoming) {
		winner, loser = existing, incoming
	}
	if loser.IsThread {
		winner.IsThread = true
	}
	if winner.ThreadID == "" {
		winner.ThreadID = loser.ThreadID
	}
	return winner
}

// overlay applies a thread-detail record over whatever the timeline
// produced for the same id. The detail version wins outright except for the
// thread mark, which stays set once any source set it.
func overlay(existing, incoming models.PostRecord) models.PostRecord {
	if existing.IsThread {
		incoming.IsThread = true
	}
	return incoming
}

// completeness counts the fields a record actually carries. It is the
// deterministic tie-break for duplicate ids across timeline batches.
func completeness(rec models.PostRecord) int {
	populated := []bool{
		rec.ThreadID != "",
		rec.CreatedAt != "",
		rec.Text != "",
		rec.Author.Name != "",
		rec.Author.Handle != "",
		rec.Author.AvatarURL != "",
		rec.Lang != "",
		len(rec.Media) > 0,
		rec.IsPinned,
		rec.IsThread,
	}
	score := lo.CountBy(populated, func(present bool) bool { return present })

	counters := []*int{
		rec.Metrics.Replies,
		rec.Metrics.Reposts,
		rec.Metrics.Likes,
		rec.Metrics.Quotes,
		rec.Metrics.Views,
	}
	return score + lo.CountBy(counters, func(c *int) bool { return c != nil })
}

func partition(byID map[string]models.PostRecord) ([]models.PostRecord, map[string][]models.PostRecord) {
	standalone := make([]models.PostRecord, 0, len(byID))
	groups := make(map[string][]models.PostRecord)
	for _, rec := range byID {
		if rec.ThreadID == "" {
			standalone = append(standalone, rec)
			continue
		}
		groups[rec.ThreadID] = append(groups[rec.ThreadID], rec)
	}
	return standalone, groups
}

func sortedBatches(batches []Batch) []Batch {
	out := make([]Batch, len(batches))
	copy(out, batches)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func sortedDetails(details []ThreadDetail) []ThreadDetail {
	out := make([]ThreadDetail, len(details))
	copy(out, details)
	sort.Slice(out, func(i, j int) bool { return out[i].ThreadID < out[j].ThreadID })
	return out
}

func sortedKeys(groups map[string][]models.PostRecord) []string {
	keys := lo.Keys(groups)
	sort.Strings(keys)
	return keys
}

// sortAscending orders thread members oldest first, ids breaking timestamp
// ties, so replies read top to bottom in posting order.
func sortAscending(records []models.PostRecord) {
	sort.Slice(records, func(i, j int) bool {
		ti, tj := records[i].CreatedTime(), records[j].CreatedTime()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return records[i].ID < records[j].ID
	})
}

// sortDescending orders the corpus newest first. Records with unparsable
// timestamps carry the minimum instant and therefore land at the end.
func sortDescending(records []models.PostRecord) {
	sort.Slice(records, func(i, j int) bool {
		ti, tj := records[i].CreatedTime(), records[j].CreatedTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return records[i].ID > records[j].ID
	})
}
