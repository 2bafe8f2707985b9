package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"placementhelper/ats-agent/internal/models"
)

// ErrNoInput is returned when there is no resume or job text to work with.
var ErrNoInput = errors.New("no input text available")

const (
	OperationAnalyze         = "analyze"
	OperationOptimize        = "optimize"
	OperationInterviewPlan   = "interview_plan"
	OperationInterviewAnswer = "interview_answer"

	PathRemote  = "remote"
	PathOffline = "offline"

	guidanceResults = 3
)

// AgentObserver receives orchestration events for metrics.
type AgentObserver interface {
	RetryObserver
	ObserveFallback(operation string)
	ObserveNormalizeFailure()
	ObserveDuration(operation, path string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string)                         {}
func (nopObserver) ObserveRetry(string)                           {}
func (nopObserver) ObserveFallback(string)                        {}
func (nopObserver) ObserveNormalizeFailure()                      {}
func (nopObserver) ObserveDuration(string, string, time.Duration) {}

// GuidanceRetriever looks up resume-writing guidance for a query.
type GuidanceRetriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

type AnalysisOutcome struct {
	Result  *models.AnalysisResult
	Elapsed time.Duration
	Offline bool
	Model   models.ModelConfig
}

type OptimizationOutcome struct {
	Text    string
	Elapsed time.Duration
	Offline bool
	Model   models.ModelConfig
}

type ResumeAgent interface {
	Analyze(ctx context.Context, req models.AnalysisRequest, notify Notifier) (*AnalysisOutcome, error)
	Optimize(ctx context.Context, req models.OptimizationRequest, notify Notifier) (*OptimizationOutcome, error)
}

type AgentOption func(*resumeAgent)

func WithGuidance(g GuidanceRetriever) AgentOption {
	return func(a *resumeAgent) { a.guidance = g }
}

func WithAgentObserver(o AgentObserver) AgentOption {
	return func(a *resumeAgent) {
		if o != nil {
			a.observer = o
		}
	}
}

func WithRunLog(r RunRecorder) AgentOption {
	return func(a *resumeAgent) {
		if r != nil {
			a.runLog = r
		}
	}
}

// WithOfflineEcho sets how many resume characters the offline template quotes back.
func WithOfflineEcho(chars int) AgentOption {
	return func(a *resumeAgent) { a.offlineEchoChars = chars }
}

type resumeAgent struct {
	generators       GeneratorSource
	backoff          *BackoffController
	prompts          *PromptBuilder
	guidance         GuidanceRetriever
	observer         AgentObserver
	runLog           RunRecorder
	offlineEchoChars int
}

// NewResumeAgent wires the analyze and optimize flows. Every call is
// independent; the agent keeps no state between requests.
func NewResumeAgent(generators GeneratorSource, backoff *BackoffController, prompts *PromptBuilder, opts ...AgentOption) ResumeAgent {
	a := &resumeAgent{
		generators:       generators,
		backoff:          backoff,
		prompts:          prompts,
		observer:         nopObserver{},
		runLog:           nopRunRecorder{},
		offlineEchoChars: 2000,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *resumeAgent) Analyze(ctx context.Context, req models.AnalysisRequest, notify Notifier) (*AnalysisOutcome, error) {
	start := time.Now()
	if notify == nil {
		notify = NopNotifier{}
	}

	if strings.TrimSpace(req.CandidateText) == "" || strings.TrimSpace(req.ReferenceText) == "" {
		return nil, ErrNoInput
	}

	model, err := models.LookupModel(req.Model)
	if err != nil {
		return nil, err
	}

	notify.Info(fmt.Sprintf("🤖 Analyzing resume with %s...", model.Name))
	prompt := a.prompts.BuildAnalysisPrompt(req.CandidateText, req.ReferenceText)

	raw, err := a.backoff.Do(ctx, model.Name, remoteCall(a.generators, model, prompt), notify)

	var result *models.AnalysisResult
	offline := err != nil
	if offline {
		a.degrade(OperationAnalyze, model, err, notify)
		result = FallbackAnalysis(req.CandidateText, req.ReferenceText)
	} else {
		var ok bool
		result, ok = NormalizeAnalysis(raw)
		if !ok {
			a.observer.ObserveNormalizeFailure()
			notify.Warn("⚠️ The model response could not be parsed. Please try again.")
		}
	}

	elapsed := time.Since(start)
	a.observer.ObserveDuration(OperationAnalyze, pathLabel(offline), elapsed)
	a.record(RunRecord{
		Timestamp:       start,
		Operation:       OperationAnalyze,
		Model:           string(model.Selector),
		Score:           intPtr(result.Score),
		MatchPercentage: intPtr(result.KeywordMatch.MatchPercentage),
		Offline:         offline,
		Duration:        elapsed,
	})

	slog.Info("✅ Analysis completed",
		"model", model.Selector, "score", result.Score, "offline", offline, "elapsed", elapsed)

	return &AnalysisOutcome{
		Result:  result,
		Elapsed: elapsed,
		Offline: offline,
		Model:   model,
	}, nil
}

func (a *resumeAgent) Optimize(ctx context.Context, req models.OptimizationRequest, notify Notifier) (*OptimizationOutcome, error) {
	start := time.Now()
	if notify == nil {
		notify = NopNotifier{}
	}

	if strings.TrimSpace(req.CandidateText) == "" || strings.TrimSpace(req.ReferenceText) == "" {
		return nil, ErrNoInput
	}

	model, err := models.LookupModel(req.Model)
	if err != nil {
		return nil, err
	}

	guidance := a.retrieveGuidance(ctx, req.ReferenceText, notify)

	notify.Info(fmt.Sprintf("✨ Optimizing resume with %s...", model.Name))
	prompt := a.prompts.BuildOptimizationPrompt(req.CandidateText, req.ReferenceText, req.AnalysisContext, guidance)

	raw, err := a.backoff.Do(ctx, model.Name, remoteCall(a.generators, model, prompt), notify)

	text := strings.TrimSpace(raw)
	offline := err != nil
	if offline {
		a.degrade(OperationOptimize, model, err, notify)
		text = OfflineOptimization(req.CandidateText, req.ReferenceText, a.offlineEchoChars)
	}

	elapsed := time.Since(start)
	a.observer.ObserveDuration(OperationOptimize, pathLabel(offline), elapsed)
	a.record(RunRecord{
		Timestamp: start,
		Operation: OperationOptimize,
		Model:     string(model.Selector),
		Offline:   offline,
		Duration:  elapsed,
	})

	slog.Info("✅ Optimization completed",
		"model", model.Selector, "offline", offline, "elapsed", elapsed, "length", len(text))

	return &OptimizationOutcome{
		Text:    text,
		Elapsed: elapsed,
		Offline: offline,
		Model:   model,
	}, nil
}

// remoteCall resolves the generator on every attempt so a missing provider
// surfaces as an ordinary fatal failure.
func remoteCall(generators GeneratorSource, model models.ModelConfig, prompt string) RemoteOperation {
	return func(ctx context.Context) (string, error) {
		gen, err := generators.GeneratorFor(model)
		if err != nil {
			return "", err
		}
		return gen.Generate(ctx, prompt)
	}
}

func (a *resumeAgent) degrade(operation string, model models.ModelConfig, err error, notify Notifier) {
	degradeToOffline(a.observer, operation, model, err, notify)
}

func degradeToOffline(observer AgentObserver, operation string, model models.ModelConfig, err error, notify Notifier) {
	slog.Warn("⚠️  Remote call failed, switching to offline mode",
		"operation", operation, "model", model.Selector, "error", err)

	if errors.Is(err, ErrFatalRemote) {
		notify.Error(fmt.Sprintf("❌ API error: %v", err))
	}
	notify.Warn("🔄 Switching to offline mode...")
	observer.ObserveFallback(operation)
}

func (a *resumeAgent) retrieveGuidance(ctx context.Context, jobDescription string, notify Notifier) string {
	if a.guidance == nil {
		return ""
	}

	results, err := a.guidance.Retrieve(ctx, a.prompts.BuildGuidanceQuery(jobDescription), guidanceResults)
	if err != nil {
		slog.Warn("⚠️  Failed to retrieve guidance", "error", err)
		notify.Warn("⚠️ Resume guidance unavailable, optimizing without it.")
		return ""
	}
	return FormatGuidanceContext(results)
}

func (a *resumeAgent) record(r RunRecord) {
	if err := a.runLog.Append(r); err != nil {
		slog.Warn("⚠️  Failed to append run log", "error", err)
	}
}

func pathLabel(offline bool) string {
	if offline {
		return PathOffline
	}
	return PathRemote
}
