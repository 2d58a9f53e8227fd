package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/gardar/hybridparse/pkg/document"
	"github.com/gardar/hybridparse/pkg/hocr"
	"github.com/gardar/hybridparse/pkg/searchable"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrNotParsed = errors.New("document has not been parsed")
)

// parsedRecord loads a completed record and its original upload.
func (p *Processor) parsedRecord(ctx context.Context, id string) (*document.Record, []byte, error) {
	rec, err := p.store.LoadRecord(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !rec.IsParsed() {
		return nil, nil, fmt.Errorf("%w: %s is %s", ErrNotParsed, id, rec.Status)
	}
	data, err := p.uploads.Read(rec)
	if err != nil {
		return rec, nil, err
	}
	return rec, data, nil
}

// HOCR renders a parsed document as hOCR. Boxes are scaled to the original
// upload's page size when it can be read.
func (p *Processor) HOCR(ctx context.Context, id string) (string, error) {
	rec, data, err := p.parsedRecord(ctx, id)
	if rec == nil {
		return "", err
	}

	var sizes []hocr.PageSize
	if err == nil {
		sizes, err = searchable.PageSizes(data, rec.ContentType)
	}
	if err != nil {
		p.logger.WithError(err).WithField("document_id", id).Warn("Using default page size for hOCR")
	}

	out, err := hocr.GenerateHOCRDocument(hocr.FromParsedDocument(rec.Parsed, sizes))
	if err != nil {
		return "", err
	}
	return out, nil
}

// SearchablePDF overlays the parsed text onto the original upload.
func (p *Processor) SearchablePDF(ctx context.Context, id string, cfg searchable.Config) ([]byte, error) {
	rec, data, err := p.parsedRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = p.logger
	}
	return searchable.Build(rec.Parsed, data, rec.ContentType, cfg)
}
