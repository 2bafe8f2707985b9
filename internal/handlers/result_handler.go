package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"placementhelper/ats-agent/internal/models"
	"placementhelper/ats-agent/internal/repositories"
)

type ResultHandler struct {
	analysisRepo repositories.AnalysisRepository
}

func NewResultHandler(analysisRepo repositories.AnalysisRepository) *ResultHandler {
	return &ResultHandler{
		analysisRepo: analysisRepo,
	}
}

// HandleGetResult handles GET /result/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	analysisID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest("Invalid analysis ID format")
	}

	analysis, err := h.analysisRepo.FindByID(analysisID)
	if err != nil {
		return err
	}

	response := models.ResultResponse{
		ID:     analysis.ID.String(),
		Status: string(analysis.Status),
		Model:  string(analysis.Model),
	}

	switch analysis.Status {
	case models.StatusCompleted:
		result, err := analysis.DecodeResult()
		if err != nil {
			return err
		}
		response.Result = result
		response.Offline = analysis.Offline
		response.DurationMS = analysis.DurationMS
	case models.StatusFailed:
		response.ErrorMessage = analysis.ErrorMessage
	}

	return c.JSON(response)
}
