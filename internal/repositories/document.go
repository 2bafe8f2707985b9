package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"placementhelper/ats-agent/internal/models"
)

type DocumentRepository interface {
	Create(document *models.Document) error
	FindByID(id uuid.UUID) (*models.Document, error)
	UpdateExtractedText(id uuid.UUID, text string) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (d *documentRepository) Create(document *models.Document) error {
	document.CharCount = len([]rune(document.ExtractedText))
	if err := d.db.Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

func (d *documentRepository) FindByID(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := d.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// UpdateExtractedText stores re-extracted text for a document.
func (d *documentRepository) UpdateExtractedText(id uuid.UUID, text string) error {
	result := d.db.Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"extracted_text": text,
			"char_count":     len([]rune(text)),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update document text: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}

	return nil
}
