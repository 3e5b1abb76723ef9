package patterns

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/viralblueprint/backend/internal/config"
)

type PatternsPlugin struct{}

func New() *PatternsPlugin {
	return &PatternsPlugin{}
}

func (p *PatternsPlugin) ID() string { return "patterns" }

func (p *PatternsPlugin) Models() []interface{} {
	return []interface{}{
		&Pattern{},
		&PatternPerformance{},
	}
}

func (p *PatternsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	patternService := NewPatternService(db)
	patternHandler := NewPatternHandler(patternService)

	router.Get("/patterns/trending", patternHandler.GetTrending)
	router.Get("/patterns", patternHandler.ListPatterns)
	router.Get("/patterns/:id", patternHandler.GetPattern)
	router.Get("/patterns/:id/performance", patternHandler.GetPerformance)
	router.Get("/patterns/:id/similar", patternHandler.GetSimilar)
}

func (p *PatternsPlugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	patternService := NewPatternService(db)
	patternHandler := NewPatternHandler(patternService)

	router.Post("/patterns", patternHandler.CreatePattern)
	router.Put("/patterns/:id", patternHandler.UpdatePattern)
	router.Delete("/patterns/:id", patternHandler.DeletePattern)
}
