package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"placementhelper/ats-agent/internal/models"
)

const (
	ComplexityBasic        = "basic"
	ComplexityIntermediate = "intermediate"
	ComplexityAdvanced     = "advanced"

	defaultInterviewMinutes = 15
	defaultTimeLimit        = 120
	neutralAnswerScore      = 5

	interviewGreeting = "Hello! Welcome to your interview. I'm your AI interviewer. Let's begin with a few questions to get to know you better."
	interviewClosing  = "Thank you for your time. The interview is now complete. We'll review your responses and get back to you soon."
)

var (
	qAboutYou = models.InterviewQuestion{
		Question: "Tell me about yourself and your background.", Category: "behavioral",
		ExpectedKeywords: []string{"experience", "skills"}, TimeLimit: 120,
	}
	qTechSkills = models.InterviewQuestion{
		Question: "What are your key technical skills?", Category: "technical",
		ExpectedKeywords: []string{"programming", "tools"}, TimeLimit: 90,
	}
	qWhyRole = models.InterviewQuestion{
		Question: "Why are you interested in this role?", Category: "role-specific",
		ExpectedKeywords: []string{"passion", "growth"}, TimeLimit: 90,
	}
	qProject = models.InterviewQuestion{
		Question: "Describe a challenging project you worked on.", Category: "behavioral",
		ExpectedKeywords: []string{"problem", "solution"}, TimeLimit: 150,
	}
	qDeadlines = models.InterviewQuestion{
		Question: "How do you handle tight deadlines?", Category: "behavioral",
		ExpectedKeywords: []string{"time management", "prioritization"}, TimeLimit: 120,
	}
	qLearning = models.InterviewQuestion{
		Question: "Describe a time you had to learn something new quickly.", Category: "behavioral",
		ExpectedKeywords: []string{"learning", "adaptability"}, TimeLimit: 120,
	}
	qProblemSolving = models.InterviewQuestion{
		Question: "What's your approach to problem-solving?", Category: "technical",
		ExpectedKeywords: []string{"methodology", "analysis"}, TimeLimit: 120,
	}
)

// InterviewComplexity maps an interview length to its complexity and question count.
func InterviewComplexity(durationMinutes int) (string, int) {
	switch {
	case durationMinutes <= 15:
		return ComplexityBasic, 3
	case durationMinutes <= 30:
		return ComplexityIntermediate, 5
	default:
		return ComplexityAdvanced, 7
	}
}

// DefaultInterviewPlan is the fixed plan used when no model is reachable.
func DefaultInterviewPlan(durationMinutes int) *models.InterviewPlan {
	var questions []models.InterviewQuestion
	switch complexity, _ := InterviewComplexity(durationMinutes); complexity {
	case ComplexityBasic:
		questions = []models.InterviewQuestion{qAboutYou, qTechSkills, qWhyRole}
	case ComplexityIntermediate:
		questions = []models.InterviewQuestion{qAboutYou, qProject, qTechSkills, qDeadlines, qWhyRole}
	default:
		questions = []models.InterviewQuestion{
			qAboutYou, qProject, qTechSkills, qDeadlines, qLearning, qProblemSolving, qWhyRole,
		}
	}

	plan := &models.InterviewPlan{
		Greeting: interviewGreeting,
		Closing:  interviewClosing,
	}
	for _, q := range questions {
		q.ExpectedKeywords = append([]string{}, q.ExpectedKeywords...)
		plan.Questions = append(plan.Questions, q)
	}
	return plan
}

type PlanOutcome struct {
	Plan       *models.InterviewPlan
	Complexity string
	Offline    bool
	Model      models.ModelConfig
}

type AnswerOutcome struct {
	Evaluation *models.AnswerEvaluation
	Offline    bool
	Model      models.ModelConfig
}

type InterviewService interface {
	GeneratePlan(ctx context.Context, req models.InterviewPlanRequest, notify Notifier) (*PlanOutcome, error)
	EvaluateAnswer(ctx context.Context, req models.AnswerRequest, notify Notifier) (*AnswerOutcome, error)
}

type interviewService struct {
	generators GeneratorSource
	backoff    *BackoffController
	prompts    *PromptBuilder
	observer   AgentObserver
	runLog     RunRecorder
}

// NewInterviewService builds the interview assistant. Requests without a
// model selector use Gemini Flash.
func NewInterviewService(generators GeneratorSource, backoff *BackoffController, prompts *PromptBuilder, observer AgentObserver, runLog RunRecorder) InterviewService {
	if observer == nil {
		observer = nopObserver{}
	}
	if runLog == nil {
		runLog = nopRunRecorder{}
	}
	return &interviewService{
		generators: generators,
		backoff:    backoff,
		prompts:    prompts,
		observer:   observer,
		runLog:     runLog,
	}
}

func (s *interviewService) model(selector models.ModelSelector) (models.ModelConfig, error) {
	if selector == "" {
		selector = models.ModelGeminiFlash
	}
	return models.LookupModel(selector)
}

func (s *interviewService) GeneratePlan(ctx context.Context, req models.InterviewPlanRequest, notify Notifier) (*PlanOutcome, error) {
	start := time.Now()
	if notify == nil {
		notify = NopNotifier{}
	}

	if strings.TrimSpace(req.JobRole) == "" {
		return nil, ErrNoInput
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = defaultInterviewMinutes
	}

	model, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}

	complexity, numQuestions := InterviewComplexity(req.DurationMinutes)
	notify.Info(fmt.Sprintf("📝 Preparing a %s interview with %d questions...", complexity, numQuestions))

	prompt := s.prompts.BuildInterviewPlanPrompt(req.ResumeText, req.JobRole, req.DurationMinutes, numQuestions, complexity)
	raw, err := s.backoff.Do(ctx, model.Name, remoteCall(s.generators, model, prompt), notify)

	var plan *models.InterviewPlan
	offline := err != nil
	if offline {
		degradeToOffline(s.observer, OperationInterviewPlan, model, err, notify)
	} else {
		plan, err = ParseInterviewPlan(raw)
		if err != nil {
			slog.Warn("⚠️  Failed to parse interview plan", "error", err)
			s.observer.ObserveNormalizeFailure()
			notify.Warn("⚠️ Could not read the generated plan, using the standard interview.")
			offline = true
		}
	}
	if plan == nil {
		plan = DefaultInterviewPlan(req.DurationMinutes)
	}

	elapsed := time.Since(start)
	s.observer.ObserveDuration(OperationInterviewPlan, pathLabel(offline), elapsed)

	return &PlanOutcome{
		Plan:       plan,
		Complexity: complexity,
		Offline:    offline,
		Model:      model,
	}, nil
}

// ParseInterviewPlan reads a plan from model output using the same brace-span
// rule as the analysis normalizer. A plan needs a greeting and one question.
func ParseInterviewPlan(raw string) (*models.InterviewPlan, error) {
	jsonStr, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var plan models.InterviewPlan
	if err := json.Unmarshal([]byte(jsonStr), &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interview plan: %w", err)
	}

	if strings.TrimSpace(plan.Greeting) == "" {
		return nil, errors.New("interview plan has no greeting")
	}

	questions := plan.Questions[:0]
	for _, q := range plan.Questions {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		if q.TimeLimit <= 0 {
			q.TimeLimit = defaultTimeLimit
		}
		if q.ExpectedKeywords == nil {
			q.ExpectedKeywords = []string{}
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, errors.New("interview plan has no questions")
	}
	plan.Questions = questions

	if strings.TrimSpace(plan.Closing) == "" {
		plan.Closing = interviewClosing
	}
	return &plan, nil
}

func (s *interviewService) EvaluateAnswer(ctx context.Context, req models.AnswerRequest, notify Notifier) (*AnswerOutcome, error) {
	start := time.Now()
	if notify == nil {
		notify = NopNotifier{}
	}

	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrNoInput
	}

	model, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}

	var (
		eval    *models.AnswerEvaluation
		offline bool
	)

	if strings.TrimSpace(req.Answer) == "" {
		eval = OfflineAnswerEvaluation(req.Answer, req.ExpectedKeywords)
		offline = true
	} else {
		prompt := s.prompts.BuildAnswerEvaluationPrompt(req.Question, req.Answer, req.ExpectedKeywords)
		raw, err := s.backoff.Do(ctx, model.Name, remoteCall(s.generators, model, prompt), notify)
		if err != nil {
			degradeToOffline(s.observer, OperationInterviewAnswer, model, err, notify)
			offline = true
		} else if eval, err = ParseAnswerEvaluation(raw); err != nil {
			slog.Warn("⚠️  Failed to parse answer evaluation", "error", err)
			s.observer.ObserveNormalizeFailure()
			offline = true
		}
		if eval == nil {
			eval = OfflineAnswerEvaluation(req.Answer, req.ExpectedKeywords)
		}
	}

	elapsed := time.Since(start)
	s.observer.ObserveDuration(OperationInterviewAnswer, pathLabel(offline), elapsed)
	if err := s.runLog.Append(RunRecord{
		Timestamp:       start,
		Operation:       OperationInterviewAnswer,
		Model:           string(model.Selector),
		Score:           intPtr(eval.Score),
		MatchPercentage: intPtr(eval.KeywordMatch),
		Offline:         offline,
		Duration:        elapsed,
	}); err != nil {
		slog.Warn("⚠️  Failed to append run log", "error", err)
	}

	return &AnswerOutcome{
		Evaluation: eval,
		Offline:    offline,
		Model:      model,
	}, nil
}

// ParseAnswerEvaluation reads a model's grade. Score is clamped to 0-10 and
// keyword_match to 0-100; fractional numbers are rounded.
func ParseAnswerEvaluation(raw string) (*models.AnswerEvaluation, error) {
	jsonStr, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Score               *float64 `json:"score"`
		Strengths           []string `json:"strengths"`
		AreasForImprovement []string `json:"areas_for_improvement"`
		KeywordMatch        float64  `json:"keyword_match"`
		Feedback            string   `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answer evaluation: %w", err)
	}
	if parsed.Score == nil {
		return nil, errors.New("answer evaluation has no score")
	}

	eval := &models.AnswerEvaluation{
		Score:               clampInt(int(math.Round(*parsed.Score)), 0, 10),
		Strengths:           parsed.Strengths,
		AreasForImprovement: parsed.AreasForImprovement,
		KeywordMatch:        clampInt(int(math.Round(parsed.KeywordMatch)), 0, 100),
		Feedback:            strings.TrimSpace(parsed.Feedback),
	}
	if eval.Strengths == nil {
		eval.Strengths = []string{}
	}
	if eval.AreasForImprovement == nil {
		eval.AreasForImprovement = []string{}
	}
	return eval, nil
}

// OfflineAnswerEvaluation grades an answer by how many expected keywords it
// mentions. With no expected keywords a non-empty answer gets a neutral score.
func OfflineAnswerEvaluation(answer string, expectedKeywords []string) *models.AnswerEvaluation {
	normalized := NormalizeText(answer)
	if normalized == "" {
		return &models.AnswerEvaluation{
			Score:               0,
			Strengths:           []string{},
			AreasForImprovement: []string{"Provide an answer to the question"},
			KeywordMatch:        0,
			Feedback:            "No answer was received.",
		}
	}

	padded := " " + normalized + " "
	var matched, missing []string
	for _, kw := range expectedKeywords {
		norm := NormalizeText(kw)
		if norm == "" {
			continue
		}
		if strings.Contains(padded, " "+norm+" ") {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}

	total := len(matched) + len(missing)
	eval := &models.AnswerEvaluation{
		Strengths:           []string{},
		AreasForImprovement: []string{},
	}

	if total == 0 {
		eval.Score = neutralAnswerScore
		eval.Feedback = "Answer received. Detailed feedback is unavailable offline."
		return eval
	}

	coverage := float64(len(matched)) / float64(total)
	eval.Score = int(math.Round(coverage * 10))
	eval.KeywordMatch = int(math.Round(coverage * 100))

	for _, kw := range matched {
		eval.Strengths = append(eval.Strengths, fmt.Sprintf("Mentioned %s", kw))
	}
	for _, kw := range missing {
		eval.AreasForImprovement = append(eval.AreasForImprovement, fmt.Sprintf("Consider discussing %s", kw))
	}

	f1 := TokenF1(answer, strings.Join(expectedKeywords, " "))
	eval.Feedback = fmt.Sprintf("Offline evaluation: covered %d of %d expected keywords (token F1 %.2f).",
		len(matched), total, f1)
	return eval
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
