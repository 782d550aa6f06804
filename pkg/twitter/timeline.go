package twitter

import (
	"encoding/json"

	"xscraper/pkg/errors"
	"xscraper/pkg/models"
)

// TimelineResult is the outcome of parsing one UserTweets response.
type TimelineResult struct {
	// Posts holds every record extracted from the response, pinned entry
	// included, in source order.
	Posts []models.PostRecord
	// IncompleteThreads lists thread ids whose conversation module carried
	// fewer posts than the server declared exist, so the full thread must be
	// fetched separately.
	IncompleteThreads []string
	// Report accounts for entries that could not be extracted.
	Report Report
}

// ParseTimeline walks one paginated UserTweets response. The returned error
// is non-nil only when the body is not valid JSON; a decodable response
// without the expected timeline container yields an empty result. A
// malformed entry is reported and skipped, never aborting the batch.
func ParseTimeline(data []byte) (*TimelineResult, error) {
	var resp timelineResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStructure, "decoding timeline response")
	}

	res := &TimelineResult{}

	// Older responses nest the timeline under timeline_v2.
	container := resp.Data.User.Result.Timeline
	if container == nil {
		container = resp.Data.User.Result.TimelineV2
	}
	if container == nil {
		return res, nil
	}

	for _, inst := range container.Timeline.Instructions {
		switch inst.Type {
		case instructionPinEntry:
			parsePinnedEntry(res, inst.Entry)
		case instructionAddEntries:
			for _, e := range inst.Entries {
				parseTimelineEntry(res, e)
			}
		}
	}
	return res, nil
}

func parsePinnedEntry(res *TimelineResult, e *entry) {
	if e == nil || e.Content == nil {
		return
	}
	post := extractFromItemContent(e.Content.ItemContent, "")
	if post == nil {
		res.Report.add(e.EntryID, "pinned entry without extractable post")
		return
	}
	post.IsPinned = true
	res.Posts = append(res.Posts, *post)
	res.Report.Parsed++
}

func parseTimelineEntry(res *TimelineResult, e entry) {
	if e.Content == nil {
		return
	}
	// Entry types other than items and modules (cursors, separators) carry
	// no posts and are not reported as skips.
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
		parseTimelineModule(res, e)
	}
}

// parseTimelineModule handles a conversation preview. Every item is tagged
// with the thread id declared by the module's first item; when that id
// cannot be resolved the whole module is skipped rather than partially
// processed. A module carrying fewer items than the server-declared member
// total marks its thread incomplete.
func parseTimelineModule(res *TimelineResult, e entry) {
	items := e.Content.Items
	threadID := moduleThreadID(items)
	if threadID == "" {
		res.Report.add(e.EntryID, "module first item has no post id")
		return
	}

	if declared := declaredThreadSize(e.Content.Metadata); len(items) < declared {
		res.IncompleteThreads = append(res.IncompleteThreads, threadID)
	}

	for _, item := range items {
		post := extractFromItemContent(moduleItemContent(item), threadID)
		if post == nil {
			res.Report.add(item.EntryID, "module item without extractable post")
			continue
		}
		res.Posts = append(res.Posts, *post)
		res.Report.Parsed++
	}
}

// moduleThreadID resolves the id of a module's first item, the post every
// member is grouped under. Empty means the module is unusable.
func moduleThreadID(items []moduleItem) string {
	if len(items) == 0 {
		return ""
	}
	ic := moduleItemContent(items[0])
	if ic == nil || ic.TweetResults == nil {
		return ""
	}
	result := ic.TweetResults.Result.Unwrap()
	if result == nil || result.Legacy == nil {
		return ""
	}
	return result.Legacy.IDStr
}

func declaredThreadSize(md *moduleMetadata) int {
	if md == nil || md.ConversationMetadata == nil {
		return 0
	}
	return len(md.ConversationMetadata.AllTweetIDs)
}

func moduleItemContent(item moduleItem) *itemContent {
	if item.Item == nil {
		return nil
	}
	return item.Item.ItemContent
}

func extractFromItemContent(ic *itemContent, threadID string) *models.PostRecord {
	if ic == nil || ic.TweetResults == nil {
		return nil
	}
	return ExtractPost(ic.TweetResults.Result, threadID)
}
