package videos

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrVideoNotFound = errors.New("video not found")

var (
	instagramCreatorRe = regexp.MustCompile(`instagram\.com/([^/?]+)`)
	tiktokCreatorRe    = regexp.MustCompile(`tiktok\.com/@([^/?]+)`)
	atHandleRe         = regexp.MustCompile(`@([^/?\s]+)`)
)

// extractCreator derives a creator handle from the profile URL the video was
// scraped from. Unknown formats fall back to the last path segment.
func extractCreator(inputURL string) string {
	if inputURL == "" {
		return "Unknown Creator"
	}

	if m := instagramCreatorRe.FindStringSubmatch(inputURL); m != nil {
		return "@" + m[1]
	}
	if m := tiktokCreatorRe.FindStringSubmatch(inputURL); m != nil {
		return "@" + m[1]
	}
	if m := atHandleRe.FindStringSubmatch(inputURL); m != nil {
		return "@" + m[1]
	}

	parts := strings.Split(inputURL, "/")
	last := parts[len(parts)-1]
	if last == "" && len(parts) > 1 {
		last = parts[len(parts)-2]
	}
	if last != "" && !strings.Contains(last, ".") {
		if strings.HasPrefix(last, "@") {
			return last
		}
		return "@" + last
	}

	return "Unknown Creator"
}

func detectPlatform(url string) string {
	if url == "" {
		return "unknown"
	}
	switch {
	case strings.Contains(url, "instagram.com"):
		return "instagram"
	case strings.Contains(url, "tiktok.com"):
		return "tiktok"
	case strings.Contains(url, "youtube.com"), strings.Contains(url, "youtu.be"):
		return "youtube"
	default:
		return "other"
	}
}

// engagementRate is (likes+comments)/plays as a percentage.
func engagementRate(v *Video) float64 {
	if v.PlayCount == 0 {
		return 0
	}
	return float64(v.LikesCount+v.CommentsCount) / float64(v.PlayCount) * 100
}

// viralScore is views over follower count, floored at 3 so every listed video
// reads as at least "3x".
func viralScore(v *Video) int64 {
	views := v.PlayCount
	if views == 0 {
		views = v.ViewCount
	}
	if v.Followers == 0 {
		return 3
	}
	score := (views + v.Followers/2) / v.Followers
	if score < 3 {
		return 3
	}
	return score
}

func mapVideo(v *Video) VideoResponse {
	views := v.PlayCount
	if views == 0 {
		views = v.ViewCount
	}
	return VideoResponse{
		ID:             v.ID,
		URL:            v.URL,
		InputURL:       v.InputURL,
		Creator:        extractCreator(v.InputURL),
		DisplayURL:     v.DisplayURL,
		Platform:       detectPlatform(v.URL),
		Views:          views,
		Likes:          v.LikesCount,
		Comments:       v.CommentsCount,
		Followers:      v.Followers,
		Duration:       v.Duration,
		Industry:       v.Industry,
		PostType:       v.Format,
		HookType:       v.HookType,
		Hook:           v.HookType,
		PostedAt:       v.PostedAt,
		CreatedAt:      v.InsertedAt,
		EngagementRate: engagementRate(v),
		ViralScore:     viralScore(v),
	}
}

type VideoService struct {
	db *gorm.DB
}

func NewVideoService(db *gorm.DB) *VideoService {
	return &VideoService{db: db}
}

func (s *VideoService) List(filters *ListFilters) (*VideoListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}
	offset := (filters.Page - 1) * filters.Limit

	query := s.db.Model(&Video{})

	if filters.Search != "" {
		like := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where(
			"LOWER(input_url) LIKE ? OR LOWER(hook_type) LIKE ? OR LOWER(industry) LIKE ? OR LOWER(format) LIKE ?",
			like, like, like, like,
		)
	}
	if len(filters.Industries) > 0 {
		query = query.Where("industry IN ?", filters.Industries)
	}
	if filters.Format != "" {
		query = query.Where("format = ?", filters.Format)
	}

	switch filters.FollowersBucket {
	case "100k-500k":
		query = query.Where("followers >= ? AND followers < ?", 100_000, 500_000)
	case "500k-1m":
		query = query.Where("followers >= ? AND followers < ?", 500_000, 1_000_000)
	case "1m-5m":
		query = query.Where("followers >= ? AND followers < ?", 1_000_000, 5_000_000)
	case "5m+":
		query = query.Where("followers >= ?", 5_000_000)
	}

	// Timeframes are cumulative: 30days includes the last 7 days, 90plus is
	// everything older than 90 days.
	now := time.Now().UTC()
	switch filters.Timeframe {
	case "7days":
		query = query.Where("posted_at >= ?", now.AddDate(0, 0, -7))
	case "30days":
		query = query.Where("posted_at >= ?", now.AddDate(0, 0, -30))
	case "90days":
		query = query.Where("posted_at >= ?", now.AddDate(0, 0, -90))
	case "90plus":
		query = query.Where("posted_at < ?", now.AddDate(0, 0, -90))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}

	if filters.OrderBy == "date" {
		query = query.Order("posted_at DESC NULLS LAST").Order("inserted_at DESC")
	} else {
		query = query.Order("play_count DESC")
	}

	// Platform is derived from the video URL, so it cannot be pushed into the
	// query. Overfetch and trim back after filtering.
	limit := filters.Limit
	if filters.Platform != "" {
		limit = filters.Limit * 3
		if limit > 500 {
			limit = 500
		}
	}

	var rows []Video
	if err := query.Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	videos := make([]VideoResponse, 0, len(rows))
	for i := range rows {
		mapped := mapVideo(&rows[i])
		if filters.Platform != "" && mapped.Platform != filters.Platform {
			continue
		}
		videos = append(videos, mapped)
		if len(videos) == filters.Limit {
			break
		}
	}

	return &VideoListResponse{
		Videos: videos,
		Total:  total,
		Page:   filters.Page,
		Limit:  filters.Limit,
	}, nil
}

func (s *VideoService) Get(id uuid.UUID) (*VideoResponse, error) {
	var v Video
	if err := s.db.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	resp := mapVideo(&v)
	return &resp, nil
}

func (s *VideoService) Industries() (*IndustriesResponse, error) {
	var industries []string
	err := s.db.Model(&Video{}).
		Distinct("industry").
		Where("industry <> ''").
		Order("industry ASC").
		Pluck("industry", &industries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list industries: %w", err)
	}
	return &IndustriesResponse{Industries: industries}, nil
}
