package patterns

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPatternNotFound  = errors.New("pattern not found")
	ErrTemplateRequired = errors.New("template is required")
	ErrCategoryRequired = errors.New("category is required")
)

type PatternService struct {
	db *gorm.DB
}

func NewPatternService(db *gorm.DB) *PatternService {
	return &PatternService{db: db}
}

// Trending returns the highest-performing patterns across the whole corpus.
func (s *PatternService) Trending(limit int) ([]Pattern, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var patterns []Pattern
	err := s.db.Order("avg_viral_ratio DESC").Limit(limit).Find(&patterns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending patterns: %w", err)
	}
	return patterns, nil
}

func (s *PatternService) List(filters *ListFilters) (*PatternListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}
	offset := (filters.Page - 1) * filters.Limit

	query := s.db.Model(&Pattern{})
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.MinViralRatio > 0 {
		query = query.Where("avg_viral_ratio >= ?", filters.MinViralRatio)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count patterns: %w", err)
	}

	query = query.Order(sortColumn(filters.SortBy) + " DESC")

	var patterns []Pattern
	if err := query.Limit(filters.Limit).Offset(offset).Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}

	return &PatternListResponse{
		Patterns: patterns,
		Total:    total,
		Page:     filters.Page,
		Limit:    filters.Limit,
	}, nil
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case "frequency":
		return "occurrence_frequency"
	case "recent":
		return "last_updated"
	default:
		return "avg_viral_ratio"
	}
}

func (s *PatternService) Get(id uuid.UUID) (*Pattern, error) {
	var p Pattern
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PatternService) Performance(patternID uuid.UUID) ([]PatternPerformance, error) {
	if _, err := s.Get(patternID); err != nil {
		return nil, err
	}

	var history []PatternPerformance
	err := s.db.Where("pattern_id = ?", patternID).
		Order("time_period DESC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pattern performance: %w", err)
	}
	return history, nil
}

// Similar returns the best patterns in the same category, excluding the
// pattern itself.
func (s *PatternService) Similar(patternID uuid.UUID, limit int) ([]Pattern, error) {
	if limit < 1 || limit > 20 {
		limit = 5
	}

	p, err := s.Get(patternID)
	if err != nil {
		return nil, err
	}

	var patterns []Pattern
	err = s.db.Where("category = ? AND id <> ?", p.Category, p.ID).
		Order("avg_viral_ratio DESC").
		Limit(limit).
		Find(&patterns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch similar patterns: %w", err)
	}
	return patterns, nil
}

func (s *PatternService) Create(req *CreatePatternRequest) (*Pattern, error) {
	if req.Template == "" {
		return nil, ErrTemplateRequired
	}
	if req.Category == "" {
		return nil, ErrCategoryRequired
	}

	hooks, err := marshalHooks(req.ExampleHooks)
	if err != nil {
		return nil, err
	}

	p := Pattern{
		ID:                  uuid.New(),
		Template:            req.Template,
		Category:            req.Category,
		OccurrenceFrequency: req.OccurrenceFrequency,
		AvgViralRatio:       req.AvgViralRatio,
		SampleSize:          req.SampleSize,
		ConfidenceLevel:     req.ConfidenceLevel,
		ExampleHooks:        hooks,
	}

	if err := s.db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create pattern: %w", err)
	}
	return &p, nil
}

func (s *PatternService) Update(id uuid.UUID, req *UpdatePatternRequest) (*Pattern, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Template != nil {
		if *req.Template == "" {
			return nil, ErrTemplateRequired
		}
		p.Template = *req.Template
	}
	if req.Category != nil {
		if *req.Category == "" {
			return nil, ErrCategoryRequired
		}
		p.Category = *req.Category
	}
	if req.OccurrenceFrequency != nil {
		p.OccurrenceFrequency = *req.OccurrenceFrequency
	}
	if req.AvgViralRatio != nil {
		p.AvgViralRatio = *req.AvgViralRatio
	}
	if req.SampleSize != nil {
		p.SampleSize = *req.SampleSize
	}
	if req.ConfidenceLevel != nil {
		p.ConfidenceLevel = *req.ConfidenceLevel
	}
	if req.ExampleHooks != nil {
		hooks, err := marshalHooks(*req.ExampleHooks)
		if err != nil {
			return nil, err
		}
		p.ExampleHooks = hooks
	}

	if err := s.db.Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to update pattern: %w", err)
	}
	return p, nil
}

// Delete removes the pattern and its performance history.
func (s *PatternService) Delete(id uuid.UUID) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pattern_id = ?", id).Delete(&PatternPerformance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Pattern{}, "id = ?", id).Error
	})
}

func marshalHooks(hooks []string) (datatypes.JSON, error) {
	if hooks == nil {
		hooks = []string{}
	}
	raw, err := json.Marshal(hooks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode example hooks: %w", err)
	}
	return datatypes.JSON(raw), nil
}
