package twitter

import (
	"strconv"

	"github.com/samber/lo"

	"xscraper/pkg/models"
)

// ExtractPost normalizes one raw tweet result into a canonical post record.
// It returns nil when the object (after resolving any visibility envelope)
// lacks the legacy content block; callers treat nil as a skipped fragment.
//
// A non-empty threadID links the record to its conversation and marks it as
// thread member. ExtractPost is a pure function of its input.
func ExtractPost(result *TweetResult, threadID string) *models.PostRecord {
	result = result.Unwrap()
	if result == nil || result.Legacy == nil {
		return nil
	}
	legacy := result.Legacy

	return &models.PostRecord{
		ID:        legacy.IDStr,
		ThreadID:  threadID,
		CreatedAt: legacy.CreatedAt,
		Text:      legacy.FullText,
		Author:    extractAuthor(result.Core),
		Metrics: models.Metrics{
			Replies: legacy.ReplyCount,
			Reposts: legacy.RetweetCount,
			Likes:   legacy.FavoriteCount,
			Quotes:  legacy.QuoteCount,
			Views:   extractViews(result.Views),
		},
		Media:    extractMedia(legacy.ExtendedEntities),
		Lang:     legacy.Lang,
		IsThread: threadID != "",
	}
}

// extractAuthor resolves the author via the primary legacy profile block,
// falling back to the core identity block field by field. Some responses
// populate only one of the two, others mix them.
func extractAuthor(core *TweetCore) models.Author {
	var author models.Author
	if core == nil || core.UserResults == nil {
		return author
	}
	user := core.UserResults.Result.Unwrap()
	if user == nil {
		return author
	}

	if user.Legacy != nil {
		author.Name = user.Legacy.Name
		author.Handle = user.Legacy.ScreenName
		author.AvatarURL = user.Legacy.ProfileImageURLHTTPS
	}
	if user.Core != nil {
		if author.Name == "" {
			author.Name = user.Core.Name
		}
		if author.Handle == "" {
			author.Handle = user.Core.ScreenName
		}
	}
	if author.AvatarURL == "" && user.Avatar != nil {
		author.AvatarURL = user.Avatar.ImageURL
	}
	return author
}

// extractMedia resolves attachment URLs in source order. Photos contribute
// their direct URL. Videos contribute the highest-bitrate MP4 variant, with
// ties going to the variant listed first; a video without any MP4 variant is
// omitted.
func extractMedia(entities *ExtendedEntities) []string {
	if entities == nil {
		return nil
	}

	var urls []string
	for _, media := range entities.Media {
		switch media.Type {
		case "photo":
			if media.MediaURLHTTPS != "" {
				urls = append(urls, media.MediaURLHTTPS)
			}
		case "video":
			if media.VideoInfo == nil {
				continue
			}
			candidates := lo.Filter(media.VideoInfo.Variants, func(v VideoVariant, _ int) bool {
				return v.ContentType == contentTypeMP4
			})
			if len(candidates) == 0 {
				continue
			}
			best := lo.MaxBy(candidates, func(a, b VideoVariant) bool {
				return a.Bitrate > b.Bitrate
			})
			if best.URL != "" {
				urls = append(urls, best.URL)
			}
		}
	}
	return urls
}

// extractViews converts the source's decimal-string view counter to an
// integer, leaving it nil when absent or unparsable.
func extractViews(views *TweetViews) *int {
	if views == nil || views.Count == "" {
		return nil
	}
	n, err := strconv.Atoi(views.Count)
	if err != nil {
		return nil
	}
	return &n
}
