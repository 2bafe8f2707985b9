package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService keeps uploaded resumes on local disk so queued analyses can
// re-extract them later.
type StorageService interface {
	SaveBytes(data []byte, originalName, prefix string) (string, string, error)
	FilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveBytes writes a resume under "<prefix>_<uuid><ext>" and returns the
// stored filename and full path. Only .pdf and .docx names are accepted.
func (s *storageService) SaveBytes(data []byte, originalName, prefix string) (string, string, error) {
	ext, err := documentExt(originalName)
	if err != nil {
		return "", "", err
	}

	filename := fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext)
	path := s.FilePath(filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return filename, path, nil
}

func (s *storageService) FilePath(filename string) string {
	return filepath.Join(s.uploadPath, filename)
}

func (s *storageService) DeleteFile(filename string) error {
	if err := os.Remove(s.FilePath(filename)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func documentExt(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !SupportedExtension(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return ext, nil
}
