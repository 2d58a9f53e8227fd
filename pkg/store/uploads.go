package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gardar/hybridparse/pkg/document"
)

// Uploads stores raw uploaded files as <id><ext> in one directory
type Uploads struct {
	dir string
}

// NewUploads creates the uploads directory.
func NewUploads(dir string) (*Uploads, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Uploads{dir: dir}, nil
}

// Save writes data under a fresh id and returns the pending record describing it.
func (u *Uploads) Save(data []byte, originalFilename, contentType string) (*document.Record, error) {
	id := uuid.NewString()
	stored := id + filepath.Ext(originalFilename)
	path := filepath.Join(u.dir, stored)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	return &document.Record{
		ID:               id,
		Filename:         stored,
		OriginalFilename: originalFilename,
		FilePath:         path,
		FileSize:         int64(len(data)),
		ContentType:      contentType,
		UploadTime:       time.Now().UTC(),
		Status:           document.StatusPending,
	}, nil
}

// Read returns the stored bytes of a record
func (u *Uploads) Read(rec *document.Record) ([]byte, error) {
	data, err := os.ReadFile(rec.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

// Remove deletes the stored file of a record; a missing file is not an error.
func (u *Uploads) Remove(rec *document.Record) error {
	if err := os.Remove(rec.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove uploaded file: %w", err)
	}
	return nil
}
