package hocr

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/gardar/hybridparse/pkg/document"
)

// PageSize is the size of a page in the unit the hOCR boxes should use.
type PageSize struct {
	Width  float64
	Height float64
}

// DefaultPageSize is used for pages whose size is unknown.
var DefaultPageSize = PageSize{Width: 1000, Height: 1000}

// System is written to the ocr-system meta tag of generated documents.
const System = "hybridparse"

// FromParsedDocument lays the parsed elements out as hOCR. Each element with
// text and coordinates becomes one content area; element coordinates are
// relative to the page and are scaled by sizes[page-1].
func FromParsedDocument(doc *document.ParsedDocument, sizes []PageSize) *HOCR {
	out := &HOCR{
		Title:    fmt.Sprintf("%s %s", doc.API, doc.Model),
		Language: "en",
		Metadata: map[string]string{
			"ocr-system":       System,
			"ocr-capabilities": "ocr_page ocr_carea ocr_par ocr_line ocrx_word",
		},
	}

	pageCount := len(sizes)
	for _, e := range doc.Elements {
		pageCount = max(pageCount, e.Page)
	}
	for i := range pageCount {
		size := DefaultPageSize
		if i < len(sizes) && sizes[i].Width > 0 && sizes[i].Height > 0 {
			size = sizes[i]
		}
		out.Pages = append(out.Pages, Page{
			ID:         fmt.Sprintf("page_%d", i+1),
			PageNumber: i,
			BBox:       NewBoundingBox(0, 0, size.Width, size.Height),
		})
	}

	for _, e := range doc.Elements {
		text := e.TrimmedText()
		box, ok := e.BoundingBox()
		if text == "" || !ok || e.Page < 1 {
			continue
		}
		page := &out.Pages[e.Page-1]
		size := PageSize{Width: page.BBox.X2, Height: page.BBox.Y2}
		bbox := NewBoundingBox(
			box.TopLeft().X*size.Width, box.TopLeft().Y*size.Height,
			box.BottomRight().X*size.Width, box.BottomRight().Y*size.Height,
		)
		prefix := fmt.Sprintf("%d_%d", e.Page, e.ID)
		page.Areas = append(page.Areas, Area{
			ID:       "block_" + prefix,
			Category: e.Category,
			BBox:     bbox,
			Paragraphs: []Paragraph{{
				ID:    "par_" + prefix,
				BBox:  bbox,
				Lines: layoutLines(prefix, text, bbox),
			}},
		})
	}
	return out
}

// layoutLines splits text into lines of equal height inside bbox and
// spreads each line's words proportionally to their length.
func layoutLines(prefix, text string, bbox BoundingBox) []Line {
	var rows []string
	for _, r := range strings.Split(text, "\n") {
		if r = strings.TrimSpace(r); r != "" {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	lineHeight := bbox.Height() / float64(len(rows))
	lines := make([]Line, 0, len(rows))
	for i, row := range rows {
		top := bbox.Y1 + float64(i)*lineHeight
		line := Line{
			ID:   fmt.Sprintf("line_%s_%d", prefix, i+1),
			BBox: NewBoundingBox(bbox.X1, top, bbox.X2, top+lineHeight),
		}

		words := strings.Fields(row)
		total := 0
		for _, w := range words {
			total += utf8.RuneCountInString(w) + 1
		}
		x := bbox.X1
		for j, w := range words {
			width := bbox.Width() * float64(utf8.RuneCountInString(w)+1) / float64(total)
			line.Words = append(line.Words, Word{
				ID:         fmt.Sprintf("word_%s_%d_%d", prefix, i+1, j+1),
				Text:       w,
				BBox:       NewBoundingBox(x, top, x+width, top+lineHeight),
				Confidence: 100,
			})
			x += width
		}
		lines = append(lines, line)
	}
	return lines
}

// ToPayload turns an hOCR document into the provider payload shape accepted
// by the normalizer. Every paragraph becomes one element whose coordinates are
// relative to its page; areas generated by FromParsedDocument keep their
// category.
func ToPayload(doc *HOCR) map[string]any {
	model := doc.Metadata["ocr-system"]
	if model == "" {
		model = "hocr"
	}

	elements := []any{}
	var texts []string
	id := 0
	for i, page := range doc.Pages {
		add := func(category string, par Paragraph) {
			text := par.Text()
			if text == "" {
				return
			}
			texts = append(texts, text)
			elements = append(elements, map[string]any{
				"id":          id,
				"category":    category,
				"page":        i + 1,
				"coordinates": relativeCoordinates(par.BBox, page.BBox),
				"content": map[string]any{
					"text":     text,
					"html":     "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>",
					"markdown": text,
				},
			})
			id++
		}
		for _, area := range page.Areas {
			category := area.Category
			if category == "" {
				category = document.CategoryParagraph
			}
			for _, par := range area.Paragraphs {
				add(category, par)
			}
		}
		for _, par := range page.Paragraphs {
			add(document.CategoryParagraph, par)
		}
	}

	return map[string]any{
		"api":      "hocr",
		"model":    model,
		"elements": elements,
		"content":  map[string]any{"text": strings.Join(texts, "\n\n")},
		"usage":    map[string]any{"pages": len(doc.Pages)},
	}
}

func relativeCoordinates(b, page BoundingBox) []any {
	w, h := page.Width(), page.Height()
	if w <= 0 || h <= 0 {
		return []any{}
	}
	x1, y1 := (b.X1-page.X1)/w, (b.Y1-page.Y1)/h
	x2, y2 := (b.X2-page.X1)/w, (b.Y2-page.Y1)/h
	return []any{
		map[string]any{"x": x1, "y": y1},
		map[string]any{"x": x2, "y": y1},
		map[string]any{"x": x2, "y": y2},
		map[string]any{"x": x1, "y": y2},
	}
}
