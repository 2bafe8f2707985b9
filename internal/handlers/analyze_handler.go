package handlers

import (
	"github.com/gofiber/fiber/v2"

	"placementhelper/ats-agent/internal/models"
	"placementhelper/ats-agent/internal/repositories"
	"placementhelper/ats-agent/internal/services"
)

type AnalysisHandler struct {
	agent  services.ResumeAgent
	resume resumeSource
}

func NewAnalysisHandler(agent services.ResumeAgent, docRepo repositories.DocumentRepository, maxTextChars int) *AnalysisHandler {
	return &AnalysisHandler{
		agent:  agent,
		resume: resumeSource{docRepo: docRepo, maxChars: maxTextChars},
	}
}

// HandleAnalyze handles POST /analyze. Remote outages still answer 200 with
// an offline result; the notices explain the degradation.
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request payload")
	}

	resumeText, err := h.resume.resolve(req.ResumeText, req.ResumeDocumentID)
	if err != nil {
		return err
	}
	if err := h.resume.checkLength("job description", req.JobDescription); err != nil {
		return err
	}

	recorder := services.NewNoticeRecorder()
	outcome, err := h.agent.Analyze(c.UserContext(), models.AnalysisRequest{
		CandidateText: resumeText,
		ReferenceText: req.JobDescription,
		Model:         models.ModelSelector(req.Model),
	}, services.MultiNotifier(recorder, services.LogNotifier{}))
	if err != nil {
		return err
	}

	return c.JSON(models.AnalyzeResponse{
		Result:     outcome.Result,
		Model:      string(outcome.Model.Selector),
		Offline:    outcome.Offline,
		DurationMS: outcome.Elapsed.Milliseconds(),
		Notices:    recorder.Notices(),
	})
}

// HandleOptimize handles POST /optimize.
func (h *AnalysisHandler) HandleOptimize(c *fiber.Ctx) error {
	var req models.OptimizeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request payload")
	}

	resumeText, err := h.resume.resolve(req.ResumeText, req.ResumeDocumentID)
	if err != nil {
		return err
	}
	if err := h.resume.checkLength("job description", req.JobDescription); err != nil {
		return err
	}

	recorder := services.NewNoticeRecorder()
	outcome, err := h.agent.Optimize(c.UserContext(), models.OptimizationRequest{
		CandidateText:   resumeText,
		ReferenceText:   req.JobDescription,
		AnalysisContext: req.AnalysisContext,
		Model:           models.ModelSelector(req.Model),
	}, services.MultiNotifier(recorder, services.LogNotifier{}))
	if err != nil {
		return err
	}

	return c.JSON(models.OptimizeResponse{
		OptimizedResume: outcome.Text,
		Model:           string(outcome.Model.Selector),
		Offline:         outcome.Offline,
		DurationMS:      outcome.Elapsed.Milliseconds(),
		Notices:         recorder.Notices(),
	})
}
