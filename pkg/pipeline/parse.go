package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/composite"
	"github.com/gardar/hybridparse/pkg/document"
	"github.com/gardar/hybridparse/pkg/normalize"
	"github.com/gardar/hybridparse/pkg/parseapi"
)

// Parse runs the state machine for one stored document and returns its
// terminal record. Every parsing failure is recorded as a failed record;
// the returned error is reserved for an unknown id or a store that cannot
// record the outcome.
func (p *Processor) Parse(ctx context.Context, id string) (*document.Record, error) {
	rec, err := p.store.LoadRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	log := p.logger.WithFields(logrus.Fields{"document_id": id, "filename": rec.OriginalFilename})

	if p.provider == nil {
		return p.fail(ctx, rec, &parseapi.ConfigurationError{Provider: "parsing", Reason: "no provider credentials configured"}, log)
	}

	rec.MarkProcessing()
	if err := p.store.SaveRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to mark document processing: %w", err)
	}

	doc, err := p.run(ctx, rec, log)
	if err != nil {
		return p.fail(ctx, rec, err, log)
	}

	if err := p.store.SaveParsedDocument(ctx, id, doc); err != nil {
		return p.fail(ctx, rec, err, log)
	}
	rec.MarkCompleted(doc)
	if err := p.store.SaveRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to mark document completed: %w", err)
	}

	log.WithFields(logrus.Fields{
		"elements":     len(doc.Elements),
		"images":       doc.ImageCount(),
		"ocr_enhanced": doc.OCREnhancedCount(),
	}).Info("Parsing completed")
	return rec, nil
}

// run calls the provider and reconstructs the document. Panics in the CPU
// stages are turned into errors so the record still reaches a terminal state.
func (p *Processor) run(ctx context.Context, rec *document.Record, log *logrus.Entry) (doc *document.ParsedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("stack", string(debug.Stack())).Error("Recovered from panic while parsing")
			err = fmt.Errorf("internal error while parsing: %v", r)
		}
	}()

	data, err := p.uploads.Read(rec)
	if err != nil {
		return nil, err
	}

	req := parseapi.NewRequest(rec.OriginalFilename, data, p.opts.ExtractImages)
	callCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	log.WithField("provider", p.provider.Name()).Info("Calling parsing provider")
	payload, err := p.provider.Parse(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc, err = normalize.Normalize(payload)
	if err != nil {
		return nil, err
	}
	p.Reconstruct(doc)
	return doc, nil
}

// Reconstruct detects image MIME types, merges composite structures and
// assembles the document Markdown in place.
func (p *Processor) Reconstruct(doc *document.ParsedDocument) {
	if len(doc.Elements) == 0 {
		return
	}
	for i := range doc.Elements {
		e := &doc.Elements[i]
		if e.HasImage() {
			e.ImageMIMEType, _ = document.SniffImageMIME(e.ImageBase64)
		}
	}
	if composite.IsComplexContentPattern(doc.Elements) {
		doc.Elements = p.detector.Detect(doc.Elements)
	}
	doc.Content.Markdown = p.assembler.Markdown(doc.Elements)
}

func (p *Processor) fail(ctx context.Context, rec *document.Record, cause error, log *logrus.Entry) (*document.Record, error) {
	msg := parseapi.FormatFailure(cause, p.opts.Language)
	rec.MarkFailed(msg)
	log.WithError(cause).WithField("message", msg).Warn("Parsing failed")
	if err := p.store.SaveRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to mark document failed: %w", err)
	}
	return rec, nil
}
