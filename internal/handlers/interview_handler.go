package handlers

import (
	"github.com/gofiber/fiber/v2"

	"placementhelper/ats-agent/internal/models"
	"placementhelper/ats-agent/internal/repositories"
	"placementhelper/ats-agent/internal/services"
)

type InterviewHandler struct {
	interviews services.InterviewService
	resume     resumeSource
}

func NewInterviewHandler(interviews services.InterviewService, docRepo repositories.DocumentRepository, maxTextChars int) *InterviewHandler {
	return &InterviewHandler{
		interviews: interviews,
		resume:     resumeSource{docRepo: docRepo, maxChars: maxTextChars},
	}
}

// HandlePlan handles POST /interview/plan
func (h *InterviewHandler) HandlePlan(c *fiber.Ctx) error {
	var req models.InterviewPlanHTTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request payload")
	}

	if req.JobRole == "" {
		return badRequest("job_role is required")
	}

	resumeText, err := h.resume.resolve(req.ResumeText, req.ResumeDocumentID)
	if err != nil {
		return err
	}

	recorder := services.NewNoticeRecorder()
	outcome, err := h.interviews.GeneratePlan(c.UserContext(), models.InterviewPlanRequest{
		ResumeText:      resumeText,
		JobRole:         req.JobRole,
		DurationMinutes: req.DurationMinutes,
		Model:           models.ModelSelector(req.Model),
	}, services.MultiNotifier(recorder, services.LogNotifier{}))
	if err != nil {
		return err
	}

	return c.JSON(models.InterviewPlanResponse{
		Plan:       outcome.Plan,
		Complexity: outcome.Complexity,
		Offline:    outcome.Offline,
		Notices:    recorder.Notices(),
	})
}

// HandleEvaluateAnswer handles POST /interview/evaluate
func (h *InterviewHandler) HandleEvaluateAnswer(c *fiber.Ctx) error {
	var req models.AnswerHTTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request payload")
	}

	if req.Question == "" {
		return badRequest("question is required")
	}
	if err := h.resume.checkLength("answer", req.Answer); err != nil {
		return err
	}

	recorder := services.NewNoticeRecorder()
	outcome, err := h.interviews.EvaluateAnswer(c.UserContext(), models.AnswerRequest{
		Question:         req.Question,
		Answer:           req.Answer,
		ExpectedKeywords: req.ExpectedKeywords,
		Model:            models.ModelSelector(req.Model),
	}, services.MultiNotifier(recorder, services.LogNotifier{}))
	if err != nil {
		return err
	}

	return c.JSON(models.AnswerResponse{
		Evaluation: outcome.Evaluation,
		Offline:    outcome.Offline,
		Notices:    recorder.Notices(),
	})
}
