package services

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyDocument     = errors.New("no text content found in document")
)

var (
	// Run text, or a paragraph/tab/break marker that becomes a space.
	docxTextPattern = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>|</w:p>|<w:tab/>|<w:br/>`)

	textReplacer = strings.NewReplacer(
		"\x0c", " ",
		"\uf0b7", " ",
		"•", " ",
		"\r", " ",
		"\n", " ",
		"\t", " ",
	)
)

// SupportedExtension reports whether ext (with the dot) can be extracted.
func SupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx":
		return true
	}
	return false
}

type DocumentExtractor interface {
	Extract(data []byte, ext string) (string, error)
	ExtractFile(filePath string) (*ExtractedDocument, error)
}

type ExtractedDocument struct {
	Text     string
	FilePath string
	Format   string
}

type documentExtractor struct{}

func NewDocumentExtractor() DocumentExtractor {
	return &documentExtractor{}
}

// Extract returns the cleaned plain text of a .pdf or .docx document.
func (d *documentExtractor) Extract(data []byte, ext string) (string, error) {
	var (
		raw string
		err error
	)

	switch strings.ToLower(ext) {
	case ".pdf":
		raw, err = extractPDF(data)
	case ".docx":
		raw, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}

	text := CleanText(raw)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func (d *documentExtractor) ExtractFile(filePath string) (*ExtractedDocument, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if !SupportedExtension(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	text, err := d.Extract(data, ext)
	if err != nil {
		return nil, err
	}

	return &ExtractedDocument{
		Text:     text,
		FilePath: filePath,
		Format:   strings.TrimPrefix(ext, "."),
	}, nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString(" ")
	}

	return textBuilder.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse DOCX: %w", err)
	}
	defer doc.Close()

	return docxPlainText(doc.Editable().GetContent()), nil
}

// docxPlainText pulls run text out of WordprocessingML.
func docxPlainText(xml string) string {
	var b strings.Builder
	for _, m := range docxTextPattern.FindAllStringSubmatchIndex(xml, -1) {
		if m[2] < 0 {
			b.WriteString(" ")
			continue
		}
		b.WriteString(html.UnescapeString(xml[m[2]:m[3]]))
	}
	return b.String()
}

// CleanText turns page breaks, bullets and control whitespace into spaces,
// then collapses repeated spaces.
func CleanText(text string) string {
	text = textReplacer.Replace(text)
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	return strings.TrimSpace(text)
}
