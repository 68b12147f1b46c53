// Package extractor converts uploaded documents into plain UTF-8 text.
package extractor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"rfpqa/internal/domain"
)

// Extractor dispatches on file extension to a format-specific reader.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractFile reads the file at path and returns its plain-text content.
// Unknown extensions fail with domain.ErrUnsupportedFormat; any reader
// failure fails with domain.ErrExtraction wrapping the cause. Partial text
// is never returned.
func (e *Extractor) ExtractFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	case ".txt":
		return extractTXT(path)
	case ".xlsx", ".xls":
		return extractXLSX(path)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
}

// ExtractUpload stages an uploaded byte stream under its declared filename
// in a temporary directory, extracts it, and removes the staging files on
// every path.
func (e *Extractor) ExtractUpload(name string, r io.Reader) (string, error) {
	dir, err := os.MkdirTemp("", "rfpqa-upload-")
	if err != nil {
		return "", fmt.Errorf("%w: stage upload: %w", domain.ErrExtraction, err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: stage upload: %w", domain.ErrExtraction, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: stage upload: %w", domain.ErrExtraction, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: stage upload: %w", domain.ErrExtraction, err)
	}
	return e.ExtractFile(path)
}

func extractTXT(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read txt: %w", domain.ErrExtraction, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: txt is not valid UTF-8: %s", domain.ErrExtraction, filepath.Base(path))
	}
	return string(data), nil
}
