package gdocai

import (
	"fmt"
	"html"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/hybridparse/pkg/document"
)

// PayloadOptions controls the conversion of a Document AI response
type PayloadOptions struct {
	Model         string
	ExtractImages bool // Attach cropped page images to table elements
}

// Payload converts a Document AI document into the provider payload shape
// accepted by the normalizer.
func Payload(doc *documentaipb.Document, opts PayloadOptions) (map[string]any, error) {
	if doc == nil {
		return nil, fmt.Errorf("no document in response")
	}

	var (
		elements []any
		htmlDoc  strings.Builder
		nextID   int
	)

	for idx, page := range doc.Pages {
		pageNum := int(page.PageNumber)
		if pageNum <= 0 {
			pageNum = idx + 1
		}

		var pgImg *pageImage
		if opts.ExtractImages && len(page.Tables) > 0 {
			img, err := decodePageImage(page)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", pageNum, err)
			}
			pgImg = img
		}

		for _, para := range page.Paragraphs {
			text := strings.TrimSpace(layoutText(para.Layout, doc.Text))
			if text == "" {
				continue
			}
			fragment := "<p>" + html.EscapeString(text) + "</p>"
			htmlDoc.WriteString(fragment)
			elements = append(elements, map[string]any{
				"id":          nextID,
				"category":    document.CategoryParagraph,
				"page":        pageNum,
				"coordinates": layoutCoordinates(para.Layout, page.Dimension),
				"content": map[string]any{
					"html":     fragment,
					"markdown": text,
					"text":     text,
				},
			})
			nextID++
		}

		for _, table := range page.Tables {
			fragment, text := tableHTML(table, doc.Text)
			htmlDoc.WriteString(fragment)
			coords := layoutCoordinates(table.Layout, page.Dimension)
			elem := map[string]any{
				"id":          nextID,
				"category":    document.CategoryTable,
				"page":        pageNum,
				"coordinates": coords,
				"content": map[string]any{
					"html": fragment,
					"text": text,
				},
			}
			if pgImg != nil {
				if crop, err := pgImg.cropBase64(coords); err == nil {
					elem["base64_encoding"] = crop
				}
			}
			elements = append(elements, elem)
			nextID++
		}
	}

	payload := map[string]any{
		"api":   Name,
		"model": opts.Model,
		"content": map[string]any{
			"html": htmlDoc.String(),
			"text": doc.Text,
		},
		"elements": elements,
		"usage":    map[string]any{"pages": len(doc.Pages)},
	}
	if elements == nil {
		payload["elements"] = []any{}
	}

	fields := ExtractFormFields(doc)
	for k, v := range ExtractCustomExtractorFields(doc) {
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		payload["fields"] = fields
	}
	return payload, nil
}

// layoutText extracts text from a layout's text anchor segments
func layoutText(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	var sb strings.Builder
	for _, seg := range layout.TextAnchor.TextSegments {
		start := max(int(seg.StartIndex), 0)
		end := min(int(seg.EndIndex), len(runes))
		if start > end {
			start = end
		}
		sb.WriteString(string(runes[start:end]))
	}
	return sb.String()
}

// layoutCoordinates returns the four corners of a layout in normalized page
// coordinates, scaling absolute vertices by the page dimension when needed.
func layoutCoordinates(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) []any {
	coords := []any{}
	if layout == nil || layout.BoundingPoly == nil {
		return coords
	}
	poly := layout.BoundingPoly

	if len(poly.NormalizedVertices) >= 4 {
		for _, v := range poly.NormalizedVertices[:4] {
			coords = append(coords, map[string]any{"x": float64(v.X), "y": float64(v.Y)})
		}
		return coords
	}
	if len(poly.Vertices) >= 4 && dim != nil && dim.Width > 0 && dim.Height > 0 {
		for _, v := range poly.Vertices[:4] {
			coords = append(coords, map[string]any{
				"x": float64(v.X) / float64(dim.Width),
				"y": float64(v.Y) / float64(dim.Height),
			})
		}
	}
	return coords
}

// tableHTML renders a Document AI table as HTML and as tab separated text.
func tableHTML(table *documentaipb.Document_Page_Table, fullText string) (string, string) {
	var (
		sb    strings.Builder
		lines []string
	)
	writeRows := func(rows []*documentaipb.Document_Page_Table_TableRow, cellTag string) {
		for _, row := range rows {
			sb.WriteString("<tr>")
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				text := strings.Join(strings.Fields(layoutText(cell.Layout, fullText)), " ")
				cells = append(cells, text)
				sb.WriteString("<" + cellTag)
				if cell.RowSpan > 1 {
					fmt.Fprintf(&sb, ` rowspan="%d"`, cell.RowSpan)
				}
				if cell.ColSpan > 1 {
					fmt.Fprintf(&sb, ` colspan="%d"`, cell.ColSpan)
				}
				sb.WriteString(">" + html.EscapeString(text) + "</" + cellTag + ">")
			}
			sb.WriteString("</tr>")
			lines = append(lines, strings.Join(cells, "\t"))
		}
	}

	sb.WriteString("<table>")
	if len(table.HeaderRows) > 0 {
		sb.WriteString("<thead>")
		writeRows(table.HeaderRows, "th")
		sb.WriteString("</thead>")
	}
	sb.WriteString("<tbody>")
	writeRows(table.BodyRows, "td")
	sb.WriteString("</tbody></table>")

	return sb.String(), strings.Join(lines, "\n")
}
