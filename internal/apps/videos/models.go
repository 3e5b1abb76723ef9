package videos

import (
	"time"

	"github.com/google/uuid"
)

// Video is a scraped short-form video with its raw engagement counters.
// Creator handle, platform, engagement rate and viral score are derived at
// response time rather than stored.
type Video struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	URL           string     `gorm:"type:text;not null" json:"url"`
	InputURL      string     `gorm:"type:text" json:"input_url"`
	DisplayURL    string     `gorm:"type:text" json:"display_url"`
	PlayCount     int64      `gorm:"not null;default:0;index" json:"play_count"`
	ViewCount     int64      `gorm:"not null;default:0" json:"view_count"`
	LikesCount    int64      `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int64      `gorm:"not null;default:0" json:"comments_count"`
	Followers     int64      `gorm:"not null;default:0;index" json:"followers"`
	Duration      float64    `json:"duration"`
	Industry      string     `gorm:"size:100;index" json:"industry"`
	Format        string     `gorm:"size:100" json:"format"`
	HookType      string     `gorm:"size:255" json:"hook_type"`
	PostedAt      *time.Time `gorm:"index" json:"posted_at"`
	InsertedAt    time.Time  `gorm:"autoCreateTime" json:"inserted_at"`
}

func (Video) TableName() string {
	return "viral_videos"
}

// --- DTOs ---

type VideoResponse struct {
	ID             uuid.UUID  `json:"id"`
	URL            string     `json:"url"`
	InputURL       string     `json:"input_url"`
	Creator        string     `json:"creator"`
	DisplayURL     string     `json:"display_url"`
	Platform       string     `json:"platform"`
	Views          int64      `json:"views"`
	Likes          int64      `json:"likes"`
	Comments       int64      `json:"comments"`
	Followers      int64      `json:"followers"`
	Duration       float64    `json:"duration"`
	Industry       string     `json:"industry"`
	PostType       string     `json:"post_type"`
	HookType       string     `json:"hook_type"`
	Hook           string     `json:"hook"`
	PostedAt       *time.Time `json:"posted_at"`
	CreatedAt      time.Time  `json:"created_at"`
	EngagementRate float64    `json:"engagement_rate"`
	ViralScore     int64      `json:"viral_score"`
}

type VideoListResponse struct {
	Videos []VideoResponse `json:"videos"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type IndustriesResponse struct {
	Industries []string `json:"industries"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// ListFilters carries the parsed query parameters for the list endpoint.
// Platform filters on a derived field, so it is applied after the database
// query.
type ListFilters struct {
	Search          string
	Industries      []string
	Format          string
	FollowersBucket string
	Timeframe       string
	Platform        string
	OrderBy         string
	Page            int
	Limit           int
}
