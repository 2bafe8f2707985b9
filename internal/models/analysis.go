package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	StatusQueued     AnalysisStatus = "queued"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// Analysis is a queued resume analysis job and, once finished, its stored result.
type Analysis struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ResumeDocumentID uuid.UUID      `gorm:"type:uuid;not null" json:"resume_document_id"`
	JobDescription   string         `gorm:"type:text;not null" json:"job_description"`
	Model            ModelSelector  `gorm:"type:text;not null" json:"model"`
	Status           AnalysisStatus `gorm:"not null;default:'queued'" json:"status"`
	ResultJSON       *string        `gorm:"type:jsonb" json:"-"`
	Score            *int           `json:"score,omitempty"`
	Offline          bool           `gorm:"not null;default:false" json:"offline"`
	DurationMS       *int64         `json:"duration_ms,omitempty"`
	ErrorMessage     *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	ResumeDocument Document `gorm:"foreignKey:ResumeDocumentID" json:"-"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// DecodeResult returns the stored result, or nil while the job has none.
func (a *Analysis) DecodeResult() (*AnalysisResult, error) {
	if a.ResultJSON == nil || *a.ResultJSON == "" {
		return nil, nil
	}
	var result AnalysisResult
	if err := json.Unmarshal([]byte(*a.ResultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	return &result, nil
}
