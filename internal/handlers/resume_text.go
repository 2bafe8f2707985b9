package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"placementhelper/ats-agent/internal/repositories"
)

// resumeSource resolves the resume text of a request: inline text wins,
// otherwise the text extracted when the document was uploaded.
type resumeSource struct {
	docRepo  repositories.DocumentRepository
	maxChars int
}

func (s resumeSource) resolve(text, documentID string) (string, error) {
	if strings.TrimSpace(text) == "" && documentID != "" {
		id, err := uuid.Parse(documentID)
		if err != nil {
			return "", badRequest("Invalid resume_document_id format")
		}
		doc, err := s.docRepo.FindByID(id)
		if err != nil {
			return "", err
		}
		text = doc.ExtractedText
	}

	if err := s.checkLength("resume", text); err != nil {
		return "", err
	}
	return text, nil
}

func (s resumeSource) checkLength(field, text string) error {
	if s.maxChars > 0 && utf8.RuneCountInString(text) > s.maxChars {
		return badRequest(fmt.Sprintf("%s text too long. Max length: %d characters", field, s.maxChars))
	}
	return nil
}
