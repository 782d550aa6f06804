package models

import "time"

// CreatedAtLayout is the timestamp layout used by the platform's legacy
// content block, e.g. "Tue Dec 30 19:40:53 +0000 2025".
const CreatedAtLayout = time.RubyDate

// Author identifies the account that published a post. Each field is
// resolved independently from the primary profile block with a fallback to
// the core identity block, so any of them may be empty.
type Author struct {
	Name      string `json:"name,omitempty"`
	Handle    string `json:"screen_name,omitempty"`
	AvatarURL string `json:"profile_image_url,omitempty"`
}

// Metrics holds per-post engagement counts. A nil field means the source did
// not report that counter, which is not the same as a count of zero.
type Metrics struct {
	Replies *int `json:"reply_count,omitempty"`
	Reposts *int `json:"retweet_count,omitempty"`
	Likes   *int `json:"favorite_count,omitempty"`
	Quotes  *int `json:"quote_count,omitempty"`
	Views   *int `json:"view_count,omitempty"`
}

// PostRecord is the canonical normalized representation of one post. It is
// the unit persisted in batch and thread-detail files, merged during
// reconciliation, and serialized into the final corpus.
//
// ID is the merge key and must be unique within a finished corpus. ThreadID
// groups the record under a conversation; a record may be its own root
// (ID == ThreadID). Thread is only ever populated on roots, and only by
// reconciliation.
type PostRecord struct {
	ID        string       `json:"id"`
	ThreadID  string       `json:"thread_id,omitempty"`
	CreatedAt string       `json:"created_at"`
	Text      string       `json:"full_text"`
	Author    Author       `json:"user"`
	Metrics   Metrics      `json:"metrics"`
	Media     []string     `json:"media,omitempty"`
	Lang      string       `json:"lang,omitempty"`
	IsPinned  bool         `json:"is_pinned,omitempty"`
	IsThread  bool         `json:"is_thread"`
	Thread    []PostRecord `json:"thread,omitempty"`
}

// CreatedTime parses the record's timestamp. Unparsable or empty values
// return the zero time.Time, which orders after every real timestamp in the
// descending corpus sort and before every real timestamp in ascending thread
// order.
func (p *PostRecord) CreatedTime() time.Time {
	return ParseCreatedAt(p.CreatedAt)
}

// ParseCreatedAt converts a platform timestamp string to a time.Time. The
// zero value acts as the minimum-instant sentinel for malformed input, so
// comparisons never fail on bad data.
func ParseCreatedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(CreatedAtLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
