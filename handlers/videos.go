package handlers

import (
	"errors"
	"log"

	"github.com/Vibhav-y/streamix/config"
	"github.com/Vibhav-y/streamix/services"
	"github.com/Vibhav-y/streamix/utils"

	"github.com/gofiber/fiber/v2"
)

// VideosHandler proxies browse/search metadata for the client UI
type VideosHandler struct {
	metadata *services.MetadataClient
}

// NewVideosHandler creates the handler with an injected metadata client
func NewVideosHandler(metadata *services.MetadataClient) *VideosHandler {
	return &VideosHandler{metadata: metadata}
}

// client returns the metadata client, honoring a per-request X-Api-Key override
func (h *VideosHandler) client(c *fiber.Ctx) *services.MetadataClient {
	return h.metadata.WithKey(c.Get("X-Api-Key"))
}

// HandlePopular handles GET /api/videos/popular
func (h *VideosHandler) HandlePopular(c *fiber.Ctx) error {
	maxResults := clampMaxResults(c.QueryInt("maxResults", config.DefaultMaxResults))
	categoryID := c.Query("categoryId", "0")

	videos, err := h.client(c).Popular(c.Context(), maxResults, categoryID)
	if err != nil {
		return metadataError(c, err)
	}
	return c.JSON(videos)
}

// HandleSearch handles GET /api/videos/search
func (h *VideosHandler) HandleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return utils.BadRequest(c, "Missing search query (?q=...)")
	}
	maxResults := clampMaxResults(c.QueryInt("maxResults", config.DefaultMaxResults))

	videos, err := h.client(c).Search(c.Context(), query, maxResults)
	if err != nil {
		return metadataError(c, err)
	}
	return c.JSON(videos)
}

// HandleVideo handles GET /api/videos/:id
func (h *VideosHandler) HandleVideo(c *fiber.Ctx) error {
	video, err := h.client(c).VideoByID(c.Context(), c.Params("id"))
	if err != nil {
		return metadataError(c, err)
	}
	if video == nil {
		return utils.NotFound(c, "Video not found")
	}
	return c.JSON(video)
}

// HandleRelated handles GET /api/videos/:id/related
func (h *VideosHandler) HandleRelated(c *fiber.Ctx) error {
	maxResults := clampMaxResults(c.QueryInt("maxResults", 15))

	videos, err := h.client(c).Related(c.Context(), c.Params("id"), maxResults)
	if err != nil {
		return metadataError(c, err)
	}
	return c.JSON(videos)
}

// HandleCategories handles GET /api/categories
func (h *VideosHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.client(c).Categories(c.Context())
	if err != nil {
		return metadataError(c, err)
	}
	return c.JSON(categories)
}

func metadataError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrAPIKeyMissing) {
		return utils.Unauthorized(c, err.Error())
	}
	log.Printf("[Videos] metadata API error: %v\n", err)
	return utils.BadGateway(c, err.Error())
}

func clampMaxResults(n int) int {
	if n < 1 {
		return config.DefaultMaxResults
	}
	if n > config.MaxMaxResults {
		return config.MaxMaxResults
	}
	return n
}
