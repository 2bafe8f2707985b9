package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"placementhelper/ats-agent/internal/models"
)

type AnalysisRepository interface {
	Create(analysis *models.Analysis) error
	FindByID(id uuid.UUID) (*models.Analysis, error)
	Claim(id uuid.UUID, staleBefore time.Time) (bool, error)
	UpdateResult(id uuid.UUID, data *AnalysisUpdateData) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int, staleBefore time.Time) ([]models.Analysis, error)
}

type AnalysisUpdateData struct {
	Result   *models.AnalysisResult
	Offline  bool
	Duration time.Duration
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(analysis *models.Analysis) error {
	if err := r.db.Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

func (r *analysisRepository) FindByID(id uuid.UUID) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := r.db.Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	return &analysis, nil
}

// Claim moves a job to processing if it is queued, or if it has been
// processing since before staleBefore. It reports false when another run owns
// the job or it already finished.
func (r *analysisRepository) Claim(id uuid.UUID, staleBefore time.Time) (bool, error) {
	result := r.db.Model(&models.Analysis{}).
		Where("id = ?", id).
		Where(r.db.Where("status = ?", models.StatusQueued).
			Or("status = ? AND updated_at < ?", models.StatusProcessing, staleBefore)).
		Updates(map[string]any{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim analysis: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *analysisRepository) UpdateResult(id uuid.UUID, data *AnalysisUpdateData) error {
	if data == nil || data.Result == nil {
		return errors.New("analysis result is required")
	}

	resultJSON, err := json.Marshal(data.Result)
	if err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}

	return r.update(id, map[string]any{
		"status":      models.StatusCompleted,
		"result_json": string(resultJSON),
		"score":       data.Result.Score,
		"offline":     data.Offline,
		"duration_ms": data.Duration.Milliseconds(),
		"updated_at":  time.Now(),
	})
}

func (r *analysisRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]any{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *analysisRepository) update(id uuid.UUID, updates map[string]any) error {
	result := r.db.Model(&models.Analysis{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update analysis: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}

	return nil
}

// FindPendingJobs returns queued jobs and jobs stuck in processing since
// before staleBefore, oldest first.
func (r *analysisRepository) FindPendingJobs(limit int, staleBefore time.Time) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Or("status = ? AND updated_at < ?", models.StatusProcessing, staleBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&analyses).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return analyses, nil
}
