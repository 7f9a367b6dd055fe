package handlers

import (
	"github.com/Vibhav-y/streamix/models"
	"github.com/Vibhav-y/streamix/services"
	"github.com/Vibhav-y/streamix/utils"

	"github.com/gofiber/fiber/v2"
)

// HandleRecommendations handles POST /api/recommendations.
// The watch history lives client-side; it arrives in the request body and
// only the derived search query goes back.
func HandleRecommendations(c *fiber.Ctx) error {
	var req models.RecommendationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	return c.JSON(models.RecommendationResponse{
		Query: services.BuildRecommendationQuery(req.History),
	})
}
