package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"placementhelper/ats-agent/internal/models"
	"placementhelper/ats-agent/internal/repositories"
)

const (
	jobQueueSize        = 100
	pendingPollInterval = 10 * time.Second
	pendingPollBatch    = 10

	// A job still processing after this long is assumed orphaned by a crash.
	staleJobAfter = 10 * time.Minute
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(analysisID uuid.UUID)
}

// AnalysisJobRunner runs one stored analysis job to completion.
type AnalysisJobRunner struct {
	analyses  repositories.AnalysisRepository
	documents repositories.DocumentRepository
	extractor DocumentExtractor
	agent     ResumeAgent
}

func NewAnalysisJobRunner(
	analyses repositories.AnalysisRepository,
	documents repositories.DocumentRepository,
	extractor DocumentExtractor,
	agent ResumeAgent,
) *AnalysisJobRunner {
	return &AnalysisJobRunner{
		analyses:  analyses,
		documents: documents,
		extractor: extractor,
		agent:     agent,
	}
}

// Run claims the job, analyzes it and stores the outcome. A job that is
// already running elsewhere or finished is skipped. Remote outages do not
// fail a job; only missing input or storage errors do.
func (r *AnalysisJobRunner) Run(ctx context.Context, analysisID uuid.UUID) error {
	claimed, err := r.analyses.Claim(analysisID, time.Now().Add(-staleJobAfter))
	if err != nil {
		return fmt.Errorf("failed to claim job: %w", err)
	}
	if !claimed {
		slog.Info("⏭️  Job already claimed or finished, skipping", "analysis_id", analysisID)
		return nil
	}

	analysis, err := r.analyses.FindByID(analysisID)
	if err != nil {
		r.fail(analysisID, err)
		return fmt.Errorf("failed to get analysis: %w", err)
	}

	resumeText, err := r.resumeText(analysis.ResumeDocumentID)
	if err != nil {
		r.fail(analysisID, err)
		return err
	}

	notifier := LogNotifier{Logger: slog.Default().With("analysis_id", analysisID)}
	outcome, err := r.agent.Analyze(ctx, models.AnalysisRequest{
		CandidateText: resumeText,
		ReferenceText: analysis.JobDescription,
		Model:         analysis.Model,
	}, notifier)
	if err != nil {
		r.fail(analysisID, err)
		return fmt.Errorf("failed to analyze: %w", err)
	}

	if err := r.analyses.UpdateResult(analysisID, &repositories.AnalysisUpdateData{
		Result:   outcome.Result,
		Offline:  outcome.Offline,
		Duration: outcome.Elapsed,
	}); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	return nil
}

// resumeText prefers the text captured at upload and re-extracts from disk
// when it is missing.
func (r *AnalysisJobRunner) resumeText(documentID uuid.UUID) (string, error) {
	doc, err := r.documents.FindByID(documentID)
	if err != nil {
		return "", fmt.Errorf("resume document not found: %w", err)
	}

	if strings.TrimSpace(doc.ExtractedText) != "" {
		return doc.ExtractedText, nil
	}

	extracted, err := r.extractor.ExtractFile(doc.FilePath)
	if err != nil {
		if errors.Is(err, ErrEmptyDocument) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("failed to extract resume: %w", err)
	}

	if err := r.documents.UpdateExtractedText(documentID, extracted.Text); err != nil {
		slog.Warn("⚠️  Failed to cache extracted text", "document_id", documentID, "error", err)
	}
	return extracted.Text, nil
}

func (r *AnalysisJobRunner) fail(analysisID uuid.UUID, cause error) {
	if err := r.analyses.UpdateError(analysisID, cause.Error()); err != nil {
		slog.Error("❌ Failed to record job error", "analysis_id", analysisID, "error", err)
	}
}

type JobRunner interface {
	Run(ctx context.Context, analysisID uuid.UUID) error
}

type worker struct {
	analyses    repositories.AnalysisRepository
	runner      JobRunner
	jobQueue    chan uuid.UUID
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewWorker(analyses repositories.AnalysisRepository, runner JobRunner, concurrency int) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		analyses:    analyses,
		runner:      runner,
		jobQueue:    make(chan uuid.UUID, jobQueueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		inFlight:    make(map[uuid.UUID]struct{}),
	}
}

func (w *worker) Start(ctx context.Context) {
	slog.Info("🚀 Starting worker", "concurrency", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	slog.Info("✅ Worker started successfully")
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		slog.Info("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		slog.Info("✅ Worker stopped")
	})
}

// EnqueueJob queues a job unless it is already queued or running.
func (w *worker) EnqueueJob(analysisID uuid.UUID) {
	w.mu.Lock()
	if _, ok := w.inFlight[analysisID]; ok {
		w.mu.Unlock()
		return
	}
	w.inFlight[analysisID] = struct{}{}
	w.mu.Unlock()

	select {
	case w.jobQueue <- analysisID:
		slog.Info("📥 Job enqueued", "analysis_id", analysisID)
	case <-w.stopChan:
		w.release(analysisID)
		slog.Warn("⚠️  Worker stopped, cannot enqueue job", "analysis_id", analysisID)
	}
}

func (w *worker) release(analysisID uuid.UUID) {
	w.mu.Lock()
	delete(w.inFlight, analysisID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			slog.Debug("👷 Worker stopped", "worker", workerID)
			return
		case <-ctx.Done():
			return
		case analysisID := <-w.jobQueue:
			slog.Info("👷 Processing job", "worker", workerID, "analysis_id", analysisID)
			if err := w.runner.Run(ctx, analysisID); err != nil {
				slog.Error("❌ Job failed", "worker", workerID, "analysis_id", analysisID, "error", err)
			} else {
				slog.Info("✅ Job completed", "worker", workerID, "analysis_id", analysisID)
			}
			w.release(analysisID)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(pendingPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.analyses.FindPendingJobs(pendingPollBatch, time.Now().Add(-staleJobAfter))
			if err != nil {
				slog.Warn("⚠️  Failed to fetch pending jobs", "error", err)
				continue
			}

			if len(pendingJobs) > 0 {
				slog.Info("📋 Found pending jobs", "count", len(pendingJobs))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
