package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"text/template"

	"golang.org/x/net/html"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var hocrTemplate = template.Must(template.New("hocr.tmpl").Funcs(template.FuncMap{
	"esc":  html.EscapeString,
	"bbox": formatBBox,
	"num":  formatNumber,
}).ParseFS(templateFS, "templates/hocr.tmpl"))

// GenerateHOCRDocument renders doc as a complete hOCR HTML document.
func GenerateHOCRDocument(doc *HOCR) (string, error) {
	var buf bytes.Buffer
	if err := hocrTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render hOCR template: %w", err)
	}
	return buf.String(), nil
}

func formatBBox(b BoundingBox) string {
	return fmt.Sprintf("bbox %s %s %s %s",
		formatNumber(b.X1), formatNumber(b.Y1), formatNumber(b.X2), formatNumber(b.Y2))
}

// formatNumber rounds to whole units, which is what hOCR consumers expect.
func formatNumber(f float64) string {
	return strconv.FormatInt(int64(f+0.5), 10)
}
