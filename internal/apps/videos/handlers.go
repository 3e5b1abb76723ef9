package videos

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type VideoHandler struct {
	videoService *VideoService
}

func NewVideoHandler(videoService *VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	filters := parseFilters(c)

	resp, err := h.videoService.List(filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to fetch videos"})
	}

	return c.JSON(resp)
}

func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: "Invalid video ID"})
	}

	video, err := h.videoService.Get(id)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to fetch video"})
	}

	return c.JSON(video)
}

func (h *VideoHandler) ListIndustries(c *fiber.Ctx) error {
	resp, err := h.videoService.Industries()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: true, Message: "Failed to fetch industries"})
	}

	return c.JSON(resp)
}

// parseFilters reads the list query parameters. Industry accepts a
// comma-separated multi-select.
func parseFilters(c *fiber.Ctx) *ListFilters {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	var industries []string
	for _, ind := range strings.Split(c.Query("industry", ""), ",") {
		if ind = strings.TrimSpace(ind); ind != "" {
			industries = append(industries, ind)
		}
	}

	return &ListFilters{
		Search:          c.Query("search", ""),
		Industries:      industries,
		Format:          c.Query("format", ""),
		FollowersBucket: c.Query("followers", ""),
		Timeframe:       c.Query("timeframe", ""),
		Platform:        c.Query("platform", ""),
		OrderBy:         c.Query("order_by", "views"),
		Page:            page,
		Limit:           limit,
	}
}
