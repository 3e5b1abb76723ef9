package apps

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/viralblueprint/backend/internal/config"
)

// Plugin defines the interface every feature module must implement.
type Plugin interface {
	// ID returns the unique module identifier, used as the route prefix.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts module routes on the given Fiber group. The group
	// is already prefixed with /api/p and has JWT plus entitlement middleware
	// applied, so every route here is subscriber-only.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// AdminPlugin extends Plugin with admin-specific route registration.
// Modules that implement this interface can register additional admin-only
// routes for managing their content.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	// The group has both JWT and Admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}
