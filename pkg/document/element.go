package document

import "strings"

// Element categories reported by parsing providers, plus the synthetic ones
// produced while reconstructing a document.
const (
	CategoryHeading1       = "heading1"
	CategoryParagraph      = "paragraph"
	CategoryText           = "text"
	CategoryCaption        = "caption"
	CategoryTable          = "table"
	CategoryFigure         = "figure"
	CategoryChart          = "chart"
	CategoryEquation       = "equation"
	CategoryDocument       = "document"
	CategoryUnknown        = "unknown"
	CategoryCompositeTable = "composite_table"
)

// Content holds the same fragment in up to three formats.
// A missing format is the empty string.
type Content struct {
	HTML     string `json:"html"`
	Markdown string `json:"markdown"`
	Text     string `json:"text"`
}

// Element is one recognized fragment of a document
type Element struct {
	ID            int     `json:"id"`
	Category      string  `json:"category"`
	Content       Content `json:"content"`
	Coordinates   []Point `json:"coordinates"`
	Page          int     `json:"page"`
	ImageBase64   string  `json:"base64_encoding,omitempty"`
	ImageMIMEType string  `json:"image_mime_type,omitempty"`

	// OCREnhanced is set once by the normalizer when the element carries both
	// image data and OCR text. Later stages only read it.
	OCREnhanced bool `json:"ocr_enhanced"`
}

// HasImage reports whether the element carries embedded image data.
func (e Element) HasImage() bool { return e.ImageBase64 != "" }

// HasText reports whether the element carries any plain text.
func (e Element) HasText() bool { return e.Content.Text != "" }

// TrimmedText returns the plain text without surrounding whitespace.
func (e Element) TrimmedText() string { return strings.TrimSpace(e.Content.Text) }

// BoundingBox returns the element's box, or false when it has fewer than four points.
func (e Element) BoundingBox() (BoundingBox, bool) {
	box, err := NewBoundingBox(e.Coordinates)
	if err != nil {
		return BoundingBox{}, false
	}
	return box, true
}

// TopY is the y of the first coordinate, or 0 when the element has none.
func (e Element) TopY() float64 {
	if len(e.Coordinates) == 0 {
		return 0
	}
	return e.Coordinates[0].Y
}

// DataURI renders the embedded image as a data URI, defaulting to PNG
// when the MIME type could not be detected.
func (e Element) DataURI() string {
	mime := e.ImageMIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + e.ImageBase64
}

// ParsedDocument is the normalized result of parsing one document
type ParsedDocument struct {
	API      string         `json:"api"`
	Model    string         `json:"model"`
	Content  Content        `json:"content"`
	Elements []Element      `json:"elements"`
	Usage    map[string]any `json:"usage"`
	Fields   map[string]any `json:"fields,omitempty"` // Form fields and extracted entities, when the provider reports them
}

// OCREnhancedCount returns how many elements carry OCR text for their own image.
func (d *ParsedDocument) OCREnhancedCount() int {
	n := 0
	for _, e := range d.Elements {
		if e.OCREnhanced {
			n++
		}
	}
	return n
}

// ImageCount returns how many elements carry embedded image data.
func (d *ParsedDocument) ImageCount() int {
	n := 0
	for _, e := range d.Elements {
		if e.HasImage() {
			n++
		}
	}
	return n
}
