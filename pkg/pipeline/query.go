package pipeline

import (
	"context"

	"github.com/gardar/hybridparse/pkg/document"
)

// Listing limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Filter narrows a document listing
type Filter struct {
	Status            document.Status // Empty matches every status
	HasOCREnhancement *bool
	Limit             int // Clamped to [1, MaxListLimit]; zero means DefaultListLimit
}

// List returns records matching f, newest first.
func (p *Processor) List(ctx context.Context, f Filter) ([]*document.Record, error) {
	recs, err := p.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	limit := f.Limit
	switch {
	case limit == 0:
		limit = DefaultListLimit
	case limit < 1:
		limit = 1
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	out := make([]*document.Record, 0, limit)
	for _, r := range recs {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.HasOCREnhancement != nil {
			has := r.Parsed != nil && r.Parsed.OCREnhancedCount() > 0
			if has != *f.HasOCREnhancement {
				continue
			}
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Summary holds the document and element totals of an analytics report
type Summary struct {
	TotalDocuments      int     `json:"total_documents"`
	CompletedDocuments  int     `json:"completed_documents"`
	TotalElements       int     `json:"total_elements"`
	TotalImages         int     `json:"total_images"`
	OCREnhancedElements int     `json:"ocr_enhanced_elements"`
	SuccessRate         float64 `json:"success_rate"` // Percent of documents completed
}

// Analytics summarizes every stored record
type Analytics struct {
	Summary              Summary                 `json:"summary"`
	CategoryDistribution map[string]int          `json:"category_distribution"`
	ProcessingStatus     map[document.Status]int `json:"processing_status"`
}

// Analytics computes the summary on demand from the full record set.
func (p *Processor) Analytics(ctx context.Context) (*Analytics, error) {
	recs, err := p.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(recs), nil
}

// Summarize aggregates records into counts by status and element category.
func Summarize(recs []*document.Record) *Analytics {
	a := &Analytics{
		Summary:              Summary{TotalDocuments: len(recs)},
		CategoryDistribution: map[string]int{},
		ProcessingStatus: map[document.Status]int{
			document.StatusPending:    0,
			document.StatusProcessing: 0,
			document.StatusCompleted:  0,
			document.StatusFailed:     0,
		},
	}

	s := &a.Summary
	for _, r := range recs {
		a.ProcessingStatus[r.Status]++
		if !r.IsParsed() {
			continue
		}
		s.CompletedDocuments++
		for _, e := range r.Parsed.Elements {
			s.TotalElements++
			a.CategoryDistribution[e.Category]++
			if e.HasImage() {
				s.TotalImages++
			}
			if e.OCREnhanced {
				s.OCREnhancedElements++
			}
		}
	}

	if s.TotalDocuments > 0 {
		s.SuccessRate = float64(s.CompletedDocuments) / float64(s.TotalDocuments) * 100
	}
	return a
}
