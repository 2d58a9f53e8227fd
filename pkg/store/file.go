package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/document"
)

// FileStore keeps every record in metadata.json and each parsed document in
// parsed/<id>.json. Metadata updates hold an exclusive file lock so several
// processes can share one storage directory.
type FileStore struct {
	dir       string
	parsedDir string
	mu        sync.Mutex
	logger    *logrus.Logger
}

// NewFileStore creates the storage layout under dir.
func NewFileStore(dir string, logger *logrus.Logger) (*FileStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &FileStore{dir: dir, parsedDir: filepath.Join(dir, "parsed"), logger: logger}
	if err := os.MkdirAll(s.parsedDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directories: %w", err)
	}
	return s, nil
}

func (s *FileStore) metadataPath() string       { return filepath.Join(s.dir, "metadata.json") }
func (s *FileStore) parsedPath(id string) string { return filepath.Join(s.parsedDir, id+".json") }

// Close is a no-op; files are not held open between calls
func (s *FileStore) Close() error { return nil }

// withLock runs fn while holding both the in-process mutex and the file lock.
func (s *FileStore) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileLock := flock.New(s.metadataPath() + ".lock")
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire metadata lock: %w", err)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.WithError(err).Warn("Failed to release metadata lock")
		}
	}()
	return fn()
}

// readMetadata reads metadata.json without locking (caller must hold lock).
func (s *FileStore) readMetadata() (map[string]*document.Record, error) {
	data, err := os.ReadFile(s.metadataPath())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]*document.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	meta := map[string]*document.Record{}
	if len(data) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return meta, nil
}

// writeMetadata replaces metadata.json via a temp file and rename.
func (s *FileStore) writeMetadata(meta map[string]*document.Record) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return writeFileAtomic(s.metadataPath(), data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *FileStore) loadParsed(id string) (*document.ParsedDocument, error) {
	data, err := os.ReadFile(s.parsedPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read parsed document: %w", err)
	}
	var doc document.ParsedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse parsed document: %w", err)
	}
	return &doc, nil
}

// attachParsed loads the parsed document of completed records.
func (s *FileStore) attachParsed(rec *document.Record) error {
	rec.Parsed = nil
	if rec.Status != document.StatusCompleted {
		return nil
	}
	doc, err := s.loadParsed(rec.ID)
	if err != nil {
		return err
	}
	rec.Parsed = doc
	return nil
}

func (s *FileStore) LoadRecord(_ context.Context, id string) (*document.Record, error) {
	var rec *document.Record
	err := s.withLock(func() error {
		meta, err := s.readMetadata()
		if err != nil {
			return err
		}
		rec = meta[id]
		return nil
	})
	if err != nil || rec == nil {
		return nil, err
	}
	if err := s.attachParsed(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FileStore) SaveRecord(_ context.Context, rec *document.Record) error {
	if rec.Parsed != nil {
		if err := s.writeParsed(rec.ID, rec.Parsed); err != nil {
			return err
		}
	}
	return s.withLock(func() error {
		meta, err := s.readMetadata()
		if err != nil {
			return err
		}
		stored := *rec
		stored.Parsed = nil
		meta[rec.ID] = &stored
		return s.writeMetadata(meta)
	})
}

func (s *FileStore) SaveParsedDocument(_ context.Context, id string, doc *document.ParsedDocument) error {
	return s.writeParsed(id, doc)
}

func (s *FileStore) writeParsed(id string, doc *document.ParsedDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode parsed document: %w", err)
	}
	return writeFileAtomic(s.parsedPath(id), data)
}

func (s *FileStore) ListRecords(_ context.Context) ([]*document.Record, error) {
	var recs []*document.Record
	err := s.withLock(func() error {
		meta, err := s.readMetadata()
		if err != nil {
			return err
		}
		for _, rec := range meta {
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, rec := range recs {
		if err := s.attachParsed(rec); err != nil {
			s.logger.WithError(err).WithField("document_id", rec.ID).Warn("Skipping unreadable parsed document")
		}
	}
	sortNewestFirst(recs)
	return recs, nil
}

func (s *FileStore) DeleteRecord(_ context.Context, id string) (bool, error) {
	found := false
	err := s.withLock(func() error {
		meta, err := s.readMetadata()
		if err != nil {
			return err
		}
		if _, found = meta[id]; !found {
			return nil
		}
		delete(meta, id)
		return s.writeMetadata(meta)
	})
	if err != nil || !found {
		return false, err
	}
	if err := os.Remove(s.parsedPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.WithError(err).WithField("document_id", id).Warn("Failed to remove parsed document")
	}
	return true, nil
}
