// Package searchable adds an invisible, selectable text layer to documents
// using the elements a parsing provider returned.
//
// PDF uploads keep their original pages, imported as templates, with the
// layer drawn on top. Image uploads are placed on a new page of the same
// size. Each page's text lives in its own optional content group, so viewers
// can toggle it.
package searchable

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/document"
	"github.com/gardar/hybridparse/pkg/hocr"
)

// ErrAlreadySearchable is returned when the PDF already carries a text layer
// and Config.Force is not set.
var ErrAlreadySearchable = errors.New("file already has an OCR text layer")

// Build renders doc's text over the original upload. contentType selects
// between the PDF and image paths.
func Build(doc *document.ParsedDocument, original []byte, contentType string, cfg Config) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document has no parsed data")
	}
	if len(original) == 0 {
		return nil, fmt.Errorf("original file is empty")
	}

	if contentType == "application/pdf" || bytes.HasPrefix(original, []byte("%PDF")) {
		sizes, err := PDFPageSizes(original)
		if err != nil {
			return nil, err
		}
		layout := hocr.FromParsedDocument(doc, sizes)
		if len(layout.Pages) > len(sizes) {
			layout.Pages = layout.Pages[:len(sizes)]
		}
		return ApplyOCR(original, layout, cfg)
	}

	w, h, err := imageSize(original)
	if err != nil {
		return nil, err
	}
	layout := hocr.FromParsedDocument(doc, []hocr.PageSize{{Width: w, Height: h}})
	// A single image has a single page; drop elements claiming later ones.
	layout.Pages = layout.Pages[:1]
	return AssembleWithOCR(layout, [][]byte{original}, cfg)
}

// PageSizes returns the page sizes of an upload: points for PDFs, pixels
// for images.
func PageSizes(data []byte, contentType string) ([]hocr.PageSize, error) {
	if contentType == "application/pdf" || bytes.HasPrefix(data, []byte("%PDF")) {
		return PDFPageSizes(data)
	}
	w, h, err := imageSize(data)
	if err != nil {
		return nil, err
	}
	return []hocr.PageSize{{Width: w, Height: h}}, nil
}

// PDFPageSizes returns the media box of every page in points.
func PDFPageSizes(pdf []byte) ([]hocr.PageSize, error) {
	dims, err := api.PageDims(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read page sizes: %w", err)
	}
	sizes := make([]hocr.PageSize, len(dims))
	for i, d := range dims {
		sizes[i] = hocr.PageSize{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

// AssembleWithOCR creates a new PDF with one page per image and the text of
// the matching hOCR page drawn over it.
func AssembleWithOCR(layout *hocr.HOCR, images [][]byte, cfg Config) ([]byte, error) {
	if layout == nil || len(layout.Pages) == 0 {
		return nil, fmt.Errorf("hOCR data contains no pages")
	}
	if len(images) < len(layout.Pages) {
		return nil, fmt.Errorf("not enough images (%d) for hOCR pages (%d)", len(images), len(layout.Pages))
	}

	prepared := make([]pageImage, len(layout.Pages))
	for i := range layout.Pages {
		img, err := preparePageImage(images[i])
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		prepared[i] = img
	}
	return createFromImages(layout, prepared, cfg)
}

// ApplyOCR overlays the text of layout onto the pages of an existing PDF.
func ApplyOCR(pdf []byte, layout *hocr.HOCR, cfg Config) ([]byte, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if layout == nil || len(layout.Pages) == 0 {
		return nil, fmt.Errorf("hOCR data contains no pages")
	}

	log := cfg.logger()
	layers, err := CheckExistingLayers(pdf, cfg.LayerName)
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	for _, w := range layers.Warnings {
		log.Warn(w)
	}
	if layers.HasOCRLayer {
		if !cfg.Force {
			return nil, fmt.Errorf("%w ('%s')", ErrAlreadySearchable, layers.OCRLayerName)
		}
		log.WithField("layer", layers.OCRLayerName).Warn("Reapplying OCR layer; the PDF will contain duplicate text")
	}
	if len(layers.Layers) > 0 {
		log.WithField("layers", strings.Join(layers.Layers, ", ")).Debug("Existing PDF layers")
	}

	return overlayPDF(pdf, layout, cfg)
}

func logPageDone(log *logrus.Logger, page, words int) {
	log.WithFields(logrus.Fields{"page": page, "words": words}).Debug("Drew text layer")
}
