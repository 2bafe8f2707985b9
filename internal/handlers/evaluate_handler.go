package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"placementhelper/ats-agent/internal/models"
	"placementhelper/ats-agent/internal/repositories"
	"placementhelper/ats-agent/internal/services"
)

type EvaluationHandler struct {
	analysisRepo repositories.AnalysisRepository
	docRepo      repositories.DocumentRepository
	worker       services.Worker
	limits       resumeSource
}

func NewEvaluationHandler(
	analysisRepo repositories.AnalysisRepository,
	docRepo repositories.DocumentRepository,
	worker services.Worker,
	maxTextChars int,
) *EvaluationHandler {
	return &EvaluationHandler{
		analysisRepo: analysisRepo,
		docRepo:      docRepo,
		worker:       worker,
		limits:       resumeSource{docRepo: docRepo, maxChars: maxTextChars},
	}
}

// HandleEvaluate handles POST /evaluate: it queues an analysis of an uploaded
// resume and returns the job id immediately.
func (h *EvaluationHandler) HandleEvaluate(c *fiber.Ctx) error {
	var req models.EvaluateRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request payload")
	}

	if req.JobDescription == "" {
		return badRequest("job_description is required")
	}
	if err := h.limits.checkLength("job description", req.JobDescription); err != nil {
		return err
	}

	if req.ResumeDocumentID == "" {
		return badRequest("resume_document_id is required")
	}

	resumeDocID, err := uuid.Parse(req.ResumeDocumentID)
	if err != nil {
		return badRequest("Invalid resume_document_id format")
	}

	model, err := models.LookupModel(models.ModelSelector(req.Model))
	if err != nil {
		return err
	}

	if _, err := h.docRepo.FindByID(resumeDocID); err != nil {
		return err
	}

	analysis := &models.Analysis{
		ID:               uuid.New(),
		ResumeDocumentID: resumeDocID,
		JobDescription:   req.JobDescription,
		Model:            model.Selector,
		Status:           models.StatusQueued,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.analysisRepo.Create(analysis); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create analysis job")
	}

	h.worker.EnqueueJob(analysis.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.EvaluateResponse{
		ID:     analysis.ID.String(),
		Status: string(models.StatusQueued),
	})
}
