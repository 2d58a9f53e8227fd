package parseapi

import (
	"context"
	"path/filepath"
	"strings"
)

// DefaultImageCategories are the element categories whose image data is
// requested as base64 when image extraction is enabled.
var DefaultImageCategories = []string{"table", "figure", "chart", "equation"}

// Provider is an external document parsing service.
// Parse returns the provider's raw JSON-like payload; turning it into
// elements is the normalizer's job.
type Provider interface {
	Name() string
	Parse(ctx context.Context, req Request) (map[string]any, error)
}

// Request is a single parse call for one document
type Request struct {
	Filename        string
	Data            []byte
	MIMEType        string
	ForceOCR        bool
	ImageCategories []string // Empty disables base64 image extraction
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".webp": "image/webp",
}

// ContentTypeForFilename maps a file extension to the MIME type sent to providers.
// Unknown extensions map to application/octet-stream.
func ContentTypeForFilename(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// NewRequest builds a request with the MIME type derived from the filename.
func NewRequest(filename string, data []byte, extractImages bool) Request {
	req := Request{
		Filename: filename,
		Data:     data,
		MIMEType: ContentTypeForFilename(filename),
		ForceOCR: true,
	}
	if extractImages {
		req.ImageCategories = append([]string(nil), DefaultImageCategories...)
	}
	return req
}
