package twitter

// Response models for the two GraphQL endpoints the capture layer
// intercepts. Only the fields the pipeline reads are declared; everything
// else in the payload is ignored during decoding.

const (
	instructionPinEntry   = "TimelinePinEntry"
	instructionAddEntries = "TimelineAddEntries"

	entryTypeItem   = "TimelineTimelineItem"
	entryTypeModule = "TimelineTimelineModule"

	typenameTweetVisibility = "TweetWithVisibilityResults"
	typenameUserVisibility  = "UserWithVisibilityResults"

	contentTypeMP4 = "video/mp4"
)

// TweetResult is one post object as it appears under tweet_results.result.
// Posts behind a visibility filter arrive wrapped in an envelope whose real
// payload sits under Tweet; Unwrap follows that envelope.
type TweetResult struct {
	Typename string       `json:"__typename"`
	Tweet    *TweetResult `json:"tweet"`
	RestID   string       `json:"rest_id"`
	Core     *TweetCore   `json:"core"`
	Legacy   *TweetLegacy `json:"legacy"`
	Views    *TweetViews  `json:"views"`
}

// Unwrap resolves the visibility envelope, returning the inner post object
// when present and the receiver otherwise.
func (r *TweetResult) Unwrap() *TweetResult {
	if r != nil && r.Typename == typenameTweetVisibility && r.Tweet != nil {
		return r.Tweet
	}
	return r
}

// TweetLegacy is the content block every usable post must carry. Engagement
// counters stay nil when the source omits them.
type TweetLegacy struct {
	IDStr            string            `json:"id_str"`
	CreatedAt        string            `json:"created_at"`
	FullText         string            `json:"full_text"`
	ReplyCount       *int              `json:"reply_count"`
	RetweetCount     *int              `json:"retweet_count"`
	FavoriteCount    *int              `json:"favorite_count"`
	QuoteCount       *int              `json:"quote_count"`
	Lang             string            `json:"lang"`
	ExtendedEntities *ExtendedEntities `json:"extended_entities"`
}

// ExtendedEntities lists a post's media attachments.
type ExtendedEntities struct {
	Media []MediaEntity `json:"media"`
}

// MediaEntity is one attachment. Photos carry a direct URL; videos carry a
// set of candidate encodings.
type MediaEntity struct {
	Type          string     `json:"type"`
	MediaURLHTTPS string     `json:"media_url_https"`
	VideoInfo     *VideoInfo `json:"video_info"`
}

// VideoInfo holds the candidate encodings of a video attachment.
type VideoInfo struct {
	Variants []VideoVariant `json:"variants"`
}

// VideoVariant is one candidate encoding. Bitrate defaults to zero when the
// source omits it, which keeps it eligible but never preferred.
type VideoVariant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// TweetViews carries the view counter, which the source reports as a
// decimal string.
type TweetViews struct {
	Count string `json:"count"`
}

// TweetCore links a post to its author.
type TweetCore struct {
	UserResults *UserResults `json:"user_results"`
}

// UserResults wraps the author object.
type UserResults struct {
	Result *UserResult `json:"result"`
}

// UserResult is the author object, possibly behind its own visibility
// envelope. Legacy is the primary profile block; Core and Avatar form the
// secondary identity used when legacy fields are missing.
type UserResult struct {
	Typename string      `json:"__typename"`
	User     *UserResult `json:"user"`
	Legacy   *UserLegacy `json:"legacy"`
	Core     *UserCore   `json:"core"`
	Avatar   *UserAvatar `json:"avatar"`
}

// Unwrap resolves the author visibility envelope.
func (u *UserResult) Unwrap() *UserResult {
	if u != nil && u.Typename == typenameUserVisibility && u.User != nil {
		return u.User
	}
	return u
}

// UserLegacy is the primary author profile block.
type UserLegacy struct {
	Name                 string `json:"name"`
	ScreenName           string `json:"screen_name"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https"`
}

// UserCore is the secondary identity block seen in newer response shapes.
type UserCore struct {
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
}

// UserAvatar is the secondary avatar block paired with UserCore.
type UserAvatar struct {
	ImageURL string `json:"image_url"`
}

// Interior timeline shapes shared by both endpoints.

type timelineResponse struct {
	Data struct {
		User struct {
			Result struct {
				Timeline   *timelineContainer `json:"timeline"`
				TimelineV2 *timelineContainer `json:"timeline_v2"`
			} `json:"result"`
		} `json:"user"`
	} `json:"data"`
}

type timelineContainer struct {
	Timeline struct {
		Instructions []instruction `json:"instructions"`
	} `json:"timeline"`
}

type detailResponse struct {
	Data struct {
		ThreadedConversation *struct {
			Instructions []instruction `json:"instructions"`
		} `json:"threaded_conversation_with_injections_v2"`
	} `json:"data"`
}

type instruction struct {
	Type    string  `json:"type"`
	Entry   *entry  `json:"entry"`
	Entries []entry `json:"entries"`
}

type entry struct {
	EntryID string        `json:"entryId"`
	Content *entryContent `json:"content"`
}

type entryContent struct {
	EntryType   string          `json:"entryType"`
	ItemContent *itemContent    `json:"itemContent"`
	Items       []moduleItem    `json:"items"`
	Metadata    *moduleMetadata `json:"metadata"`
}

type moduleItem struct {
	EntryID string `json:"entryId"`
	Item    *struct {
		ItemContent *itemContent `json:"itemContent"`
	} `json:"item"`
}

type itemContent struct {
	TweetResults *tweetResults `json:"tweet_results"`
}

type tweetResults struct {
	Result *TweetResult `json:"result"`
}

type moduleMetadata struct {
	ConversationMetadata *conversationMetadata `json:"conversationMetadata"`
}

type conversationMetadata struct {
	AllTweetIDs []string `json:"allTweetIds"`
}
