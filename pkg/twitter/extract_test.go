package twitter

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPostRequiresLegacy(t *testing.T) {
	assert.Nil(t, ExtractPost(nil, ""))
	assert.Nil(t, ExtractPost(&TweetResult{RestID: "1"}, ""))
	assert.Nil(t, ExtractPost(&TweetResult{Typename: "TweetTombstone"}, ""))
}

func TestExtractPostBasicFields(t *testing.T) {
	result := &TweetResult{
		Core: &TweetCore{
			UserResults: &UserResults{
				Result: &UserResult{
					Legacy: &UserLegacy{
						Name:                 "Ada Lovelace",
						ScreenName:           "ada",
						ProfileImageURLHTTPS: "https://img.example/ada.jpg",
					},
				},
			},
		},
		Views: &TweetViews{Count: "12847"},
		Legacy: &TweetLegacy{
			IDStr:         "1001",
			CreatedAt:     "Tue Dec 30 19:40:53 +0000 2025",
			FullText:      "hello world",
			ReplyCount:    lo.ToPtr(3),
			RetweetCount:  lo.ToPtr(7),
			FavoriteCount: lo.ToPtr(42),
			QuoteCount:    lo.ToPtr(0),
			Lang:          "en",
		},
	}

	post := ExtractPost(result, "")
	require.NotNil(t, post)

	assert.Equal(t, "1001", post.ID)
	assert.Empty(t, post.ThreadID)
	assert.False(t, post.IsThread)
	assert.Equal(t, "hello world", post.Text)
	assert.Equal(t, "Tue Dec 30 19:40:53 +0000 2025", post.CreatedAt)
	assert.Equal(t, "Ada Lovelace", post.Author.Name)
	assert.Equal(t, "ada", post.Author.Handle)
	assert.Equal(t, "https://img.example/ada.jpg", post.Author.AvatarURL)
	assert.Equal(t, "en", post.Lang)

	require.NotNil(t, post.Metrics.Replies)
	assert.Equal(t, 3, *post.Metrics.Replies)
	require.NotNil(t, post.Metrics.Quotes)
	assert.Equal(t, 0, *post.Metrics.Quotes, "a reported zero must stay zero, not nil")
	require.NotNil(t, post.Metrics.Views)
	assert.Equal(t, 12847, *post.Metrics.Views)
}

func TestExtractPostIsDeterministic(t *testing.T) {
	result := &TweetResult{
		Legacy: &TweetLegacy{IDStr: "5", CreatedAt: "Mon Jan 06 08:00:00 +0000 2025", FullText: "same in, same out"},
	}

	first := ExtractPost(result, "5")
	second := ExtractPost(result, "5")
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestExtractPostUnwrapsVisibilityEnvelope(t *testing.T) {
	result := &TweetResult{
		Typename: "TweetWithVisibilityResults",
		Tweet: &TweetResult{
			Views:  &TweetViews{Count: "55"},
			Legacy: &TweetLegacy{IDStr: "2002", FullText: "limited visibility"},
		},
	}

	post := ExtractPost(result, "")
	require.NotNil(t, post)
	assert.Equal(t, "2002", post.ID)
	require.NotNil(t, post.Metrics.Views, "views must come from the unwrapped object")
	assert.Equal(t, 55, *post.Metrics.Views)
}

func TestExtractPostThreadTagging(t *testing.T) {
	result := &TweetResult{Legacy: &TweetLegacy{IDStr: "3003"}}

	post := ExtractPost(result, "3000")
	require.NotNil(t, post)
	assert.Equal(t, "3000", post.ThreadID)
	assert.True(t, post.IsThread)
}

func TestExtractAuthorFieldByFieldFallback(t *testing.T) {
	tests := []struct {
		name       string
		user       *UserResult
		wantName   string
		wantHandle string
		wantAvatar string
	}{
		{
			name: "legacy only",
			user: &UserResult{
				Legacy: &UserLegacy{Name: "Full Legacy", ScreenName: "legacy", ProfileImageURLHTTPS: "https://img/l.jpg"},
			},
			wantName:   "Full Legacy",
			wantHandle: "legacy",
			wantAvatar: "https://img/l.jpg",
		},
		{
			name: "core identity fills gaps in legacy",
			user: &UserResult{
				Legacy: &UserLegacy{Name: "Only Name"},
				Core:   &UserCore{Name: "Ignored", ScreenName: "core_handle"},
				Avatar: &UserAvatar{ImageURL: "https://img/c.jpg"},
			},
			wantName:   "Only Name",
			wantHandle: "core_handle",
			wantAvatar: "https://img/c.jpg",
		},
		{
			name: "core identity only",
			user: &UserResult{
				Core:   &UserCore{Name: "Core Name", ScreenName: "core"},
				Avatar: &UserAvatar{ImageURL: "https://img/a.jpg"},
			},
			wantName:   "Core Name",
			wantHandle: "core",
			wantAvatar: "https://img/a.jpg",
		},
		{
			name: "visibility wrapped author",
			user: &UserResult{
				Typename: "UserWithVisibilityResults",
				User: &UserResult{
					Legacy: &UserLegacy{Name: "Inner", ScreenName: "inner"},
				},
			},
			wantName:   "Inner",
			wantHandle: "inner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &TweetResult{
				Core:   &TweetCore{UserResults: &UserResults{Result: tt.user}},
				Legacy: &TweetLegacy{IDStr: "1"},
			}

			post := ExtractPost(result, "")
			require.NotNil(t, post)
			assert.Equal(t, tt.wantName, post.Author.Name)
			assert.Equal(t, tt.wantHandle, post.Author.Handle)
			assert.Equal(t, tt.wantAvatar, post.Author.AvatarURL)
		})
	}
}

func TestExtractPostWithoutAuthorBlock(t *testing.T) {
	post := ExtractPost(&TweetResult{Legacy: &TweetLegacy{IDStr: "9"}}, "")
	require.NotNil(t, post)
	assert.Empty(t, post.Author.Name)
	assert.Empty(t, post.Author.Handle)
	assert.Empty(t, post.Author.AvatarURL)
}

func TestExtractMediaSelectsHighestBitrateMP4(t *testing.T) {
	result := &TweetResult{
		Legacy: &TweetLegacy{
			IDStr: "7",
			ExtendedEntities: &ExtendedEntities{
				Media: []MediaEntity{
					{
						Type: "video",
						VideoInfo: &VideoInfo{
							Variants: []VideoVariant{
								{Bitrate: 500, ContentType: "video/mp4", URL: "https://v/low.mp4"},
								{Bitrate: 2000, ContentType: "video/mp4", URL: "https://v/high.mp4"},
								{Bitrate: 9999, ContentType: "application/x-mpegURL", URL: "https://v/stream.m3u8"},
							},
						},
					},
				},
			},
		},
	}

	post := ExtractPost(result, "")
	require.NotNil(t, post)
	assert.Equal(t, []string{"https://v/high.mp4"}, post.Media)
}

func TestExtractMediaMixedAttachmentsKeepOrder(t *testing.T) {
	result := &TweetResult{
		Legacy: &TweetLegacy{
			IDStr: "8",
			ExtendedEntities: &ExtendedEntities{
				Media: []MediaEntity{
					{Type: "photo", MediaURLHTTPS: "https://img/first.jpg"},
					{
						Type: "video",
						VideoInfo: &VideoInfo{
							Variants: []VideoVariant{{Bitrate: 832, ContentType: "video/mp4", URL: "https://v/clip.mp4"}},
						},
					},
					{Type: "photo", MediaURLHTTPS: "https://img/last.jpg"},
				},
			},
		},
	}

	post := ExtractPost(result, "")
	require.NotNil(t, post)
	assert.Equal(t, []string{"https://img/first.jpg", "https://v/clip.mp4", "https://img/last.jpg"}, post.Media)
}

func TestExtractMediaOmitsVideoWithoutMP4(t *testing.T) {
	result := &TweetResult{
		Legacy: &TweetLegacy{
			IDStr: "9",
			ExtendedEntities: &ExtendedEntities{
				Media: []MediaEntity{
					{
						Type: "video",
						VideoInfo: &VideoInfo{
							Variants: []VideoVariant{{Bitrate: 9999, ContentType: "application/x-mpegURL", URL: "https://v/s.m3u8"}},
						},
					},
				},
			},
		},
	}

	post := ExtractPost(result, "")
	require.NotNil(t, post)
	assert.Empty(t, post.Media)
}

func TestExtractViews(t *testing.T) {
	tests := []struct {
		name  string
		views *TweetViews
		want  *int
	}{
		{name: "numeric", views: &TweetViews{Count: "305"}, want: lo.ToPtr(305)},
		{name: "absent block", views: nil, want: nil},
		{name: "empty count", views: &TweetViews{}, want: nil},
		{name: "unavailable marker", views: &TweetViews{Count: "unavailable"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractViews(tt.views))
		})
	}
}
