package patterns

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Pattern is a recurring hook template mined from the video corpus, with the
// aggregate stats backing its ranking.
type Pattern struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Template            string         `gorm:"type:text;not null" json:"template"`
	Category            string         `gorm:"size:100;not null;index" json:"category"`
	OccurrenceFrequency int            `gorm:"not null;default:0" json:"occurrence_frequency"`
	AvgViralRatio       float64        `gorm:"not null;default:0;index" json:"avg_viral_ratio"`
	SampleSize          int            `gorm:"not null;default:0" json:"sample_size"`
	ConfidenceLevel     float64        `gorm:"not null;default:0" json:"confidence_level"`
	ExampleHooks        datatypes.JSON `gorm:"type:jsonb" json:"example_hooks"`
	LastUpdated         time.Time      `gorm:"autoUpdateTime" json:"last_updated"`
	CreatedAt           time.Time      `json:"created_at"`
}

func (Pattern) TableName() string {
	return "hook_patterns"
}

// PatternPerformance is one time-bucketed measurement of how a pattern
// performed.
type PatternPerformance struct {
	ID                      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatternID               uuid.UUID `gorm:"type:uuid;not null;index" json:"pattern_id"`
	TimePeriod              string    `gorm:"size:50;not null" json:"time_period"`
	ViralRatio              float64   `gorm:"not null;default:0" json:"viral_ratio"`
	SuccessRate             float64   `gorm:"not null;default:0" json:"success_rate"`
	SampleSize              int       `gorm:"not null;default:0" json:"sample_size"`
	StatisticalSignificance float64   `gorm:"not null;default:0" json:"statistical_significance"`
	CreatedAt               time.Time `json:"created_at"`
}

func (PatternPerformance) TableName() string {
	return "pattern_performance"
}

// --- DTOs ---

type PatternListResponse struct {
	Patterns []Pattern `json:"patterns"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

type CreatePatternRequest struct {
	Template            string   `json:"template"`
	Category            string   `json:"category"`
	OccurrenceFrequency int      `json:"occurrence_frequency"`
	AvgViralRatio       float64  `json:"avg_viral_ratio"`
	SampleSize          int      `json:"sample_size"`
	ConfidenceLevel     float64  `json:"confidence_level"`
	ExampleHooks        []string `json:"example_hooks"`
}

type UpdatePatternRequest struct {
	Template            *string   `json:"template"`
	Category            *string   `json:"category"`
	OccurrenceFrequency *int      `json:"occurrence_frequency"`
	AvgViralRatio       *float64  `json:"avg_viral_ratio"`
	SampleSize          *int      `json:"sample_size"`
	ConfidenceLevel     *float64  `json:"confidence_level"`
	ExampleHooks        *[]string `json:"example_hooks"`
}

type ListFilters struct {
	Category      string
	MinViralRatio float64
	SortBy        string
	Page          int
	Limit         int
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}
