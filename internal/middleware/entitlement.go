package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/viralblueprint/backend/internal/billing"
	"github.com/viralblueprint/backend/internal/dto"
	"github.com/viralblueprint/backend/internal/models"
	"github.com/viralblueprint/backend/internal/session"
)

// EntitlementRequired gates premium routes on the subscription record. The
// check is server-side on every request; client-cached subscription state is
// never trusted for gating decisions. The predicate itself lives in
// billing.Entitled.
func EntitlementRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := session.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var rec models.Subscription
		if err := db.Where("user_id = ?", userID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Message: "Subscription required",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to verify subscription",
			})
		}

		if !billing.Entitled(&rec) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Subscription required",
			})
		}

		return c.Next()
	}
}
