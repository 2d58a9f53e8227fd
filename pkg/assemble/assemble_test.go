package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/hybridparse/pkg/document"
)

func at(y float64) []document.Point {
	return []document.Point{{X: 0.1, Y: y}, {X: 0.9, Y: y}, {X: 0.9, Y: y + 0.05}, {X: 0.1, Y: y + 0.05}}
}

func sample() []document.Element {
	return []document.Element{
		{ID: 3, Category: document.CategoryParagraph, Page: 2, Coordinates: at(0.1),
			Content: document.Content{HTML: "<p>Page two</p>"}},
		{ID: 2, Category: document.CategoryParagraph, Page: 1, Coordinates: at(0.5),
			Content: document.Content{HTML: `<p>See <a href="https://example.com">the site</a></p>`}},
		{ID: 1, Category: document.CategoryHeading1, Page: 1, Coordinates: at(0.1),
			Content: document.Content{HTML: "<h1>Title</h1>"}},
		{ID: 4, Category: document.CategoryCompositeTable, Page: 1, Coordinates: at(0.3),
			Content: document.Content{Markdown: "composite md", HTML: "<p>ignored</p>"}},
		{ID: 5, Category: document.CategoryFigure, Page: 1, Coordinates: at(0.4), OCREnhanced: true,
			ImageBase64: "x", Content: document.Content{Text: "ocr text", HTML: "<p>ignored</p>"}},
		{ID: 6, Category: document.CategoryFigure, Page: 1, Coordinates: at(0.45)},
	}
}

func TestMarkdownReadingOrder(t *testing.T) {
	a := New(nil)
	md := a.Markdown(sample())
	assert.Equal(t, "# Title\n\ncomposite md\n\nocr text\n\nSee the site\n\nPage two", md)
}

func TestMarkdownIdempotentAndCached(t *testing.T) {
	a := New(nil)
	elems := sample()

	first := a.Markdown(elems)
	cached := make([]string, len(elems))
	for i, e := range elems {
		cached[i] = e.Content.Markdown
	}
	assert.Equal(t, "# Title", elems[2].Content.Markdown)
	assert.Equal(t, "See the site", elems[1].Content.Markdown)
	assert.Equal(t, "composite md", elems[3].Content.Markdown)
	assert.Empty(t, elems[4].Content.Markdown, "ocr element is read, not rewritten")

	second := a.Markdown(elems)
	assert.Equal(t, first, second)
	for i, e := range elems {
		assert.Equal(t, cached[i], e.Content.Markdown)
	}
}

func TestMarkdownNoCoordinatesSortFirst(t *testing.T) {
	elems := []document.Element{
		{ID: 1, Page: 1, Coordinates: at(0.2), Content: document.Content{HTML: "<p>second</p>"}},
		{ID: 2, Page: 1, Content: document.Content{HTML: "<p>first</p>"}},
	}
	assert.Equal(t, "first\n\nsecond", New(nil).Markdown(elems))
}

func TestMarkdownEmpty(t *testing.T) {
	assert.Equal(t, "", New(nil).Markdown(nil))
}

func TestConvertHTMLTable(t *testing.T) {
	md, err := New(nil).ConvertHTML("<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>")
	require.NoError(t, err)
	assert.Contains(t, md, "| A")
	assert.Contains(t, md, "| 1")
}
