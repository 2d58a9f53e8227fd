// Package store persists document records and their parsed results.
package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/document"
)

// Store is a key-value store of document records keyed by document id.
// Saves are atomic per call; a read-modify-write cycle spanning several calls
// is not serialized, so callers keep a single writer per document.
type Store interface {
	// LoadRecord returns nil and no error when the id is unknown.
	// Completed records come back with their parsed document attached.
	LoadRecord(ctx context.Context, id string) (*document.Record, error)
	SaveRecord(ctx context.Context, rec *document.Record) error
	SaveParsedDocument(ctx context.Context, id string, doc *document.ParsedDocument) error
	// ListRecords returns every record, newest upload first.
	ListRecords(ctx context.Context) ([]*document.Record, error)
	// DeleteRecord reports whether a record existed.
	DeleteRecord(ctx context.Context, id string) (bool, error)
	Close() error
}

// Backends
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Open creates the store for backend rooted at dir.
func Open(backend, dir string, logger *logrus.Logger) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLite(dir, logger)
	case BackendFile:
		return NewFileStore(dir, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func sortNewestFirst(recs []*document.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].UploadTime.After(recs[j].UploadTime)
	})
}
