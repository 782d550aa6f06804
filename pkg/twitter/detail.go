package twitter

import (
	"encoding/json"

	"xscraper/pkg/errors"
	"xscraper/pkg/models"
)

// DetailResult is the outcome of parsing one TweetDetail response.
type DetailResult struct {
	// Posts holds the conversation's records in source order; the order is
	// preserved as returned, not resorted.
	Posts []models.PostRecord
	// Report accounts for entries that could not be extracted.
	Report Report
}

// ParseThreadDetail walks one single-conversation TweetDetail response,
// used to backfill threads the timeline only previewed. Records carry no
// thread id of their own; tagging happens when the unit is persisted and
// again during reconciliation. Fault isolation matches ParseTimeline.
func ParseThreadDetail(data []byte) (*DetailResult, error) {
	var resp detailResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStructure, "decoding detail response")
	}

	res := &DetailResult{}
	if resp.Data.ThreadedConversation == nil {
		return res, nil
	}

	for _, inst := range resp.Data.ThreadedConversation.Instructions {
		if inst.Type != instructionAddEntries {
			continue
		}
		for _, e := range inst.Entries {
			parseDetailEntry(res, e)
		}
	}
	return res, nil
}

func parseDetailEntry(res *DetailResult, e entry) {
	if e.Content == nil {
		return
	}
	switch e.Content.EntryType {
	case entryTypeItem:
		post := extractFromItemContent(e.Content.ItemContent, "")
		if post == nil {
			res.Report.add(e.EntryID, "entry without extractable post")
			return
		}
		res.Posts = append(res.Posts, *post)
		res.Report.Parsed++
	case entryTypeModule:
		for _, item := range e.Content.Items {
			post := extractFromItemContent(moduleItemContent(item), "")
			if post == nil {
				res.Report.add(item.EntryID, "module item without extractable post")
				continue
			}
			res.Posts = append(res.Posts, *post)
			res.Report.Parsed++
		}
	}
}
