package hocr

import (
	"strings"
)

// ExtractHOCRText returns the text of every page: one line per hOCR line,
// a blank line between paragraphs and pages.
func ExtractHOCRText(doc *HOCR) string {
	var pages []string
	for _, page := range doc.Pages {
		var pars []string
		for _, par := range page.AllParagraphs() {
			if t := par.Text(); t != "" {
				pars = append(pars, t)
			}
		}
		pages = append(pages, strings.Join(pars, "\n\n"))
	}
	return strings.Join(pages, "\n\n")
}

// AllParagraphs lists the paragraphs of every area followed by the page's
// loose paragraphs.
func (p Page) AllParagraphs() []Paragraph {
	var out []Paragraph
	for _, a := range p.Areas {
		out = append(out, a.Paragraphs...)
	}
	return append(out, p.Paragraphs...)
}

// Text joins the paragraph's lines with newlines.
func (p Paragraph) Text() string {
	lines := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		if t := l.Text(); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// Text joins the line's words with single spaces.
func (l Line) Text() string {
	words := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		if w.Text != "" {
			words = append(words, w.Text)
		}
	}
	return strings.Join(words, " ")
}
