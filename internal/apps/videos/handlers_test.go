package videos

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters(t *testing.T) {
	var captured *ListFilters

	app := fiber.New()
	app.Get("/videos", func(c *fiber.Ctx) error {
		captured = parseFilters(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET",
		"/videos?search=gym&industry=fitness,%20food&format=talking-head&followers=1m-5m&timeframe=30days&platform=tiktok&order_by=date&page=2&limit=50",
		nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, captured)
	assert.Equal(t, "gym", captured.Search)
	assert.Equal(t, []string{"fitness", "food"}, captured.Industries)
	assert.Equal(t, "talking-head", captured.Format)
	assert.Equal(t, "1m-5m", captured.FollowersBucket)
	assert.Equal(t, "30days", captured.Timeframe)
	assert.Equal(t, "tiktok", captured.Platform)
	assert.Equal(t, "date", captured.OrderBy)
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, 50, captured.Limit)
}

func TestParseFiltersDefaults(t *testing.T) {
	var captured *ListFilters

	app := fiber.New()
	app.Get("/videos", func(c *fiber.Ctx) error {
		captured = parseFilters(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/videos", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, captured)
	assert.Empty(t, captured.Search)
	assert.Nil(t, captured.Industries)
	assert.Equal(t, "views", captured.OrderBy)
	assert.Equal(t, 1, captured.Page)
	assert.Equal(t, 20, captured.Limit)
}
