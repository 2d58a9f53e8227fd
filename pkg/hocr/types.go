// Package hocr reads and writes hOCR, the HTML-based OCR interchange format.
//
// The object model follows the hOCR hierarchy: pages (ocr_page) hold content
// areas (ocr_carea), areas hold paragraphs (ocr_par), paragraphs hold lines
// (ocr_line) and lines hold words (ocrx_word). Bounding boxes are in the
// page's own units, pixels for scanned images and points for PDFs.
package hocr

// HOCR is a whole hOCR document.
type HOCR struct {
	Title    string
	Language string
	Metadata map[string]string // ocr-system, ocr-capabilities, ...
	Pages    []Page
}

// Page corresponds to class 'ocr_page'.
type Page struct {
	ID         string
	PageNumber int // zero-based, from ppageno
	ImageName  string
	BBox       BoundingBox
	Areas      []Area
	Paragraphs []Paragraph // paragraphs with no enclosing area
}

// Area corresponds to class 'ocr_carea'. Category carries the parsed
// element category when the document was generated from parsing results.
type Area struct {
	ID         string
	Category   string
	BBox       BoundingBox
	Paragraphs []Paragraph
}

// Paragraph corresponds to class 'ocr_par'.
type Paragraph struct {
	ID    string
	Lang  string
	BBox  BoundingBox
	Lines []Line
}

// Line corresponds to class 'ocr_line'.
type Line struct {
	ID       string
	BBox     BoundingBox
	Baseline string
	Words    []Word
}

// Word corresponds to class 'ocrx_word'.
type Word struct {
	ID         string
	Text       string
	BBox       BoundingBox
	Confidence float64 // x_wconf, 0-100
}

// BoundingBox is an hOCR 'bbox' property: top-left and bottom-right corners.
type BoundingBox struct {
	X1, Y1, X2, Y2 float64
}

func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func (b BoundingBox) Width() float64  { return b.X2 - b.X1 }
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }
