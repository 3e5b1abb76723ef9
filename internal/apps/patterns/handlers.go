package patterns

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PatternHandler struct {
	patternService *PatternService
}

func NewPatternHandler(patternService *PatternService) *PatternHandler {
	return &PatternHandler{patternService: patternService}
}

func (h *PatternHandler) GetTrending(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	patterns, err := h.patternService.Trending(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to fetch trending patterns"})
	}

	return c.JSON(fiber.Map{"patterns": patterns})
}

func (h *PatternHandler) ListPatterns(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	minRatio, _ := strconv.ParseFloat(c.Query("min_viral_ratio", "0"), 64)

	resp, err := h.patternService.List(&ListFilters{
		Category:      c.Query("category", ""),
		MinViralRatio: minRatio,
		SortBy:        c.Query("sort_by", "viral_ratio"),
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to fetch patterns"})
	}

	return c.JSON(resp)
}

func (h *PatternHandler) GetPattern(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: "Invalid pattern ID"})
	}

	pattern, err := h.patternService.Get(id)
	if err != nil {
		if errors.Is(err, ErrPatternNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to fetch pattern"})
	}

	return c.JSON(pattern)
}

func (h *PatternHandler) GetPerformance(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: "Invalid pattern ID"})
	}

	history, err := h.patternService.Performance(id)
	if err != nil {
		if errors.Is(err, ErrPatternNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to fetch pattern performance"})
	}

	return c.JSON(fiber.Map{"performance": history})
}

func (h *PatternHandler) GetSimilar(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: "Invalid pattern ID"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "5"))

	patterns, err := h.patternService.Similar(id, limit)
	if err != nil {
		if errors.Is(err, ErrPatternNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to fetch similar patterns"})
	}

	return c.JSON(fiber.Map{"patterns": patterns})
}

func (h *PatternHandler) CreatePattern(c *fiber.Ctx) error {
	var req CreatePatternRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: "Invalid request body"})
	}

	pattern, err := h.patternService.Create(&req)
	if err != nil {
		if errors.Is(err, ErrTemplateRequired) || errors.Is(err, ErrCategoryRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to create pattern"})
	}

	return c.Status(fiber.StatusCreated).JSON(pattern)
}

func (h *PatternHandler) UpdatePattern(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: "Invalid pattern ID"})
	}

	var req UpdatePatternRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: "Invalid request body"})
	}

	pattern, err := h.patternService.Update(id, &req)
	if err != nil {
		if errors.Is(err, ErrPatternNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: err.Error()})
		}
		if errors.Is(err, ErrTemplateRequired) || errors.Is(err, ErrCategoryRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to update pattern"})
	}

	return c.JSON(pattern)
}

func (h *PatternHandler) DeletePattern(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: "Invalid pattern ID"})
	}

	if err := h.patternService.Delete(id); err != nil {
		if errors.Is(err, ErrPatternNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to delete pattern"})
	}

	return c.JSON(fiber.Map{"message": "Pattern deleted"})
}
