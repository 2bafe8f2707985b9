package handlers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"placementhelper/ats-agent/internal/models"
	"placementhelper/ats-agent/internal/repositories"
	"placementhelper/ats-agent/internal/services"
)

const resumeFileType = "resume"

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	extractor      services.DocumentExtractor
	maxFileSize    int64
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	extractor services.DocumentExtractor,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		extractor:      extractor,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload handles POST /upload with a multipart "resume" file (.pdf or .docx).
// The text is extracted up front so an unreadable file is rejected immediately.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile(resumeFileType)
	if err != nil {
		return badRequest("No resume uploaded. Please upload 'resume' as a PDF or DOCX file.")
	}

	if file.Size > h.maxFileSize {
		return badRequest(fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !services.SupportedExtension(ext) {
		return fmt.Errorf("%w: %q (use .pdf or .docx)", services.ErrUnsupportedFormat, ext)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return fmt.Errorf("failed to read uploaded file: %w", err)
	}

	text, err := h.extractor.Extract(data, ext)
	if err != nil {
		return err
	}

	filename, filePath, err := h.storageService.SaveBytes(data, file.Filename, resumeFileType)
	if err != nil {
		return fmt.Errorf("failed to save resume file: %w", err)
	}

	doc := models.Document{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: file.Filename,
		FileType:         resumeFileType,
		FilePath:         filePath,
		ExtractedText:    text,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.docRepo.Create(&doc); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storageService.DeleteFile(filename)
		return fmt.Errorf("failed to save resume document record: %w", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "File uploaded successfully",
		"document": models.UploadResponse{
			ID:           doc.ID.String(),
			Filename:     doc.Filename,
			OriginalName: doc.OriginalFileName,
			FileType:     doc.FileType,
			CharCount:    doc.CharCount,
		},
	})
}
