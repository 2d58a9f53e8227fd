// Package pipeline drives uploaded documents through parsing:
// upload, provider call, normalization, composite detection, Markdown
// assembly and persistence, tracking each document's status on its record.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/gardar/hybridparse/pkg/assemble"
	"github.com/gardar/hybridparse/pkg/composite"
	"github.com/gardar/hybridparse/pkg/document"
	"github.com/gardar/hybridparse/pkg/parseapi"
	"github.com/gardar/hybridparse/pkg/store"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Minute

// Options configures a Processor
type Options struct {
	Store    store.Store
	Uploads  *store.Uploads
	Provider parseapi.Provider // nil fails every parse with a configuration error
	Logger   *logrus.Logger

	Language      language.Tag
	MaxFileSize   int64
	Timeout       time.Duration
	ExtractImages bool
	ValidatePDF   bool

	// MinVerticalThreshold overrides the composite detector's floor.
	MinVerticalThreshold float64

	// Background runs parsing in its own goroutine after Upload returns.
	// When false Upload parses inline and returns the finished record.
	Background bool
}

// Processor owns the parsing state machine. It is constructed once and
// shared by every request handler.
type Processor struct {
	store     store.Store
	uploads   *store.Uploads
	provider  parseapi.Provider
	detector  composite.Detector
	assembler *assemble.Assembler
	logger    *logrus.Logger
	opts      Options
	wg        sync.WaitGroup
}

// Upload is a file received at the upload boundary
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// New creates a processor.
func New(opts Options) (*Processor, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("pipeline requires a store")
	}
	if opts.Uploads == nil {
		return nil, fmt.Errorf("pipeline requires an uploads directory")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}

	return &Processor{
		store:     opts.Store,
		uploads:   opts.Uploads,
		provider:  opts.Provider,
		detector:  composite.Detector{MinVerticalThreshold: opts.MinVerticalThreshold},
		assembler: assemble.New(opts.Logger),
		logger:    opts.Logger,
		opts:      opts,
	}, nil
}

// Assembler returns the Markdown assembler used by the processor.
func (p *Processor) Assembler() *assemble.Assembler { return p.assembler }

// Upload validates and stores a file, saves its pending record and starts parsing.
func (p *Processor) Upload(ctx context.Context, up Upload) (*document.Record, error) {
	if err := ValidateUpload(up.Filename, int64(len(up.Data)), p.opts.MaxFileSize); err != nil {
		return nil, err
	}
	if p.opts.ValidatePDF && strings.EqualFold(filepath.Ext(up.Filename), ".pdf") {
		if err := validatePDF(up.Data); err != nil {
			return nil, err
		}
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = parseapi.ContentTypeForFilename(up.Filename)
	}

	rec, err := p.uploads.Save(up.Data, up.Filename, contentType)
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"document_id": rec.ID,
		"filename":    rec.OriginalFilename,
		"size":        rec.FileSize,
	}).Info("Document uploaded")

	if p.opts.Background {
		p.Start(rec.ID)
		return rec, nil
	}

	if _, err := p.Parse(ctx, rec.ID); err != nil {
		return nil, err
	}
	updated, err := p.store.LoadRecord(ctx, rec.ID)
	if err != nil || updated == nil {
		return rec, err
	}
	return updated, nil
}

// Start parses a document in a new goroutine. The goroutine is detached from
// any request context; callers must not start two parses of one document at once.
func (p *Processor) Start(id string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.Parse(context.Background(), id); err != nil {
			p.logger.WithError(err).WithField("document_id", id).Error("Background parsing could not record its outcome")
		}
	}()
}

// Wait blocks until background parses started by this processor have finished.
func (p *Processor) Wait() { p.wg.Wait() }

// Get returns a record, or nil when the id is unknown.
func (p *Processor) Get(ctx context.Context, id string) (*document.Record, error) {
	return p.store.LoadRecord(ctx, id)
}

// Delete removes a record and its uploaded file. It reports false for unknown ids.
// Deleting a document that is still processing races the background write-back.
func (p *Processor) Delete(ctx context.Context, id string) (bool, error) {
	rec, err := p.store.LoadRecord(ctx, id)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	if err := p.uploads.Remove(rec); err != nil {
		p.logger.WithError(err).WithField("document_id", id).Warn("Failed to remove uploaded file")
	}
	return p.store.DeleteRecord(ctx, id)
}
