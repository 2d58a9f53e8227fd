package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// MinFileSize rejects empty or truncated uploads.
const MinFileSize = 100

// DefaultMaxFileSize is 50 MB.
const DefaultMaxFileSize = 50 * 1024 * 1024

// AllowedExtensions are the upload formats accepted by the pipeline.
var AllowedExtensions = []string{
	".pdf", ".docx", ".pptx", ".xlsx", ".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".heic", ".webp",
}

// ValidationError rejects an upload before any record is created.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateUpload checks the extension allow-list and size bounds.
func ValidateUpload(filename string, size int64, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, a := range AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return &ValidationError{Message: fmt.Sprintf("Unsupported file format. Supported formats: %s",
			strings.Join(AllowedExtensions, ", "))}
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if size > maxSize {
		return &ValidationError{Message: fmt.Sprintf("File too large. Maximum size: %dMB", maxSize/(1024*1024))}
	}
	if size < MinFileSize {
		return &ValidationError{Message: "File too small. Please check if it's a valid document."}
	}
	return nil
}

// validatePDF rejects PDFs that cannot be read or have no pages.
func validatePDF(data []byte) error {
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("Invalid PDF file: %v", err)}
	}
	if n == 0 {
		return &ValidationError{Message: "Invalid PDF file: document has no pages"}
	}
	return nil
}
