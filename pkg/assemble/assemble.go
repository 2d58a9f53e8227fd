// Package assemble linearizes parsed elements into one Markdown document.
package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/document"
)

// Assembler converts element HTML to Markdown and joins elements in reading order
type Assembler struct {
	converter *converter.Converter
	policy    *bluemonday.Policy
	logger    *logrus.Logger
}

// New creates an assembler. A nil logger uses the logrus standard logger.
func New(logger *logrus.Logger) *Assembler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Assembler{
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		policy: sanitizePolicy(),
		logger: logger,
	}
}

// sanitizePolicy keeps document structure and images but not links,
// so anchors collapse to their text.
func sanitizePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowImages()
	p.AllowDataURIImages()
	p.AllowTables()
	p.AllowLists()
	p.AllowElements("p", "br", "h1", "h2", "h3", "h4", "h5", "h6", "div", "span",
		"pre", "code", "blockquote", "b", "strong", "i", "em", "u", "sub", "sup",
		"hr", "figure", "figcaption")
	return p
}

// Markdown returns the document Markdown for elems, sorted by page and then by
// the y of each element's first coordinate. Elements without coordinates sort
// first on their page.
//
// OCR-enhanced and composite elements contribute their Markdown, or their text
// when they have none. Other elements have their HTML converted, and the
// result is stored back on elems so repeated calls give the same output.
func (a *Assembler) Markdown(elems []document.Element) string {
	if len(elems) == 0 {
		return ""
	}

	order := make([]int, len(elems))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		ex, ey := elems[order[x]], elems[order[y]]
		if ex.Page != ey.Page {
			return ex.Page < ey.Page
		}
		return ex.TopY() < ey.TopY()
	})

	parts := make([]string, 0, len(elems))
	for _, i := range order {
		if part := a.elementMarkdown(&elems[i]); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (a *Assembler) elementMarkdown(e *document.Element) string {
	if e.OCREnhanced || e.Category == document.CategoryCompositeTable {
		if e.Content.Markdown != "" {
			return e.Content.Markdown
		}
		return e.Content.Text
	}
	if e.Content.HTML == "" {
		return ""
	}

	md, err := a.ConvertHTML(e.Content.HTML)
	if err != nil {
		a.logger.WithError(err).WithField("element_id", e.ID).Warn("Falling back to element text")
		md = strings.TrimSpace(e.Content.Text)
	}
	e.Content.Markdown = md
	return md
}

// ConvertHTML sanitizes an HTML fragment and converts it to Markdown.
func (a *Assembler) ConvertHTML(fragment string) (string, error) {
	clean := a.policy.Sanitize(fragment)
	md, err := a.converter.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}
