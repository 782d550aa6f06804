package twitter

import "github.com/samber/lo"

// Skip records one entry that could not be turned into a post record.
type Skip struct {
	Entry  string
	Reason string
}

// Report aggregates per-entry outcomes for one parsed response. Entries
// that fail extraction are accounted for here instead of being dropped
// silently, so the capture loop can log what a batch actually yielded.
type Report struct {
	Parsed  int
	Skipped []Skip
}

func (r *Report) add(entryID, reason string) {
	r.Skipped = append(r.Skipped, Skip{Entry: entryID, Reason: reason})
}

// Fields renders the report as structured log fields.
func (r *Report) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"parsed":  r.Parsed,
		"skipped": len(r.Skipped),
	}
	if len(r.Skipped) > 0 {
		fields["skip_reasons"] = lo.Map(r.Skipped, func(s Skip, _ int) string {
			return s.Entry + ": " + s.Reason
		})
	}
	return fields
}
