package videos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCreator(t *testing.T) {
	tests := []struct {
		name     string
		inputURL string
		expected string
	}{
		{"instagram profile", "https://www.instagram.com/fitnessguru", "@fitnessguru"},
		{"instagram with query", "https://www.instagram.com/fitnessguru?hl=en", "@fitnessguru"},
		{"tiktok profile", "https://www.tiktok.com/@dancequeen", "@dancequeen"},
		{"tiktok with trailing path", "https://www.tiktok.com/@dancequeen/video/123", "@dancequeen"},
		{"bare handle", "@someone", "@someone"},
		{"trailing path segment", "https://example.com/profiles/creatorname", "@creatorname"},
		{"empty", "", "Unknown Creator"},
		{"bare domain", "https://example.com", "Unknown Creator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractCreator(tt.inputURL))
		})
	}
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.instagram.com/reel/abc", "instagram"},
		{"https://www.tiktok.com/@user/video/123", "tiktok"},
		{"https://www.youtube.com/watch?v=abc", "youtube"},
		{"https://youtu.be/abc", "youtube"},
		{"https://vimeo.com/123", "other"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected+" "+tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectPlatform(tt.url))
		})
	}
}

func TestEngagementRate(t *testing.T) {
	assert.Equal(t, float64(0), engagementRate(&Video{}))

	v := &Video{PlayCount: 1000, LikesCount: 80, CommentsCount: 20}
	assert.InDelta(t, 10.0, engagementRate(v), 0.001)
}

func TestViralScore(t *testing.T) {
	tests := []struct {
		name     string
		video    Video
		expected int64
	}{
		{"no followers floors at 3", Video{PlayCount: 1_000_000}, 3},
		{"below floor clamps to 3", Video{PlayCount: 10_000, Followers: 100_000}, 3},
		{"exact ratio", Video{PlayCount: 1_000_000, Followers: 100_000}, 10},
		{"rounds to nearest", Video{PlayCount: 750_000, Followers: 100_000}, 8},
		{"falls back to view count", Video{ViewCount: 500_000, Followers: 100_000}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, viralScore(&tt.video))
		})
	}
}

func TestMapVideoComputedFields(t *testing.T) {
	v := &Video{
		URL:           "https://www.tiktok.com/@dancequeen/video/123",
		InputURL:      "https://www.tiktok.com/@dancequeen",
		PlayCount:     2_000_000,
		LikesCount:    150_000,
		CommentsCount: 50_000,
		Followers:     200_000,
		Industry:      "fitness",
		Format:        "talking-head",
		HookType:      "question hook",
	}

	resp := mapVideo(v)
	assert.Equal(t, "@dancequeen", resp.Creator)
	assert.Equal(t, "tiktok", resp.Platform)
	assert.Equal(t, int64(2_000_000), resp.Views)
	assert.Equal(t, int64(10), resp.ViralScore)
	assert.InDelta(t, 10.0, resp.EngagementRate, 0.001)
	assert.Equal(t, "question hook", resp.Hook)
	assert.Equal(t, "talking-head", resp.PostType)
}
