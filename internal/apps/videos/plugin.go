package videos

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/viralblueprint/backend/internal/config"
)

type VideosPlugin struct{}

func New() *VideosPlugin {
	return &VideosPlugin{}
}

func (p *VideosPlugin) ID() string { return "videos" }

func (p *VideosPlugin) Models() []interface{} {
	return []interface{}{
		&Video{},
	}
}

func (p *VideosPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	videoService := NewVideoService(db)
	videoHandler := NewVideoHandler(videoService)

	router.Get("/videos", videoHandler.ListVideos)
	router.Get("/videos/industries", videoHandler.ListIndustries)
	router.Get("/videos/:id", videoHandler.GetVideo)
}
