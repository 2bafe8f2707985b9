package handlers

import (
	"github.com/gofiber/fiber/v2"

	"placementhelper/ats-agent/internal/models"
)

// HandleListModels handles GET /models
func HandleListModels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"default": models.DefaultModel,
		"models":  models.Catalog(),
	})
}
