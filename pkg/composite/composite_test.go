package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/hybridparse/pkg/document"
)

const pngB64 = "iVBORw0KGgoAAAANSUhEUg=="

func rect(x1, y1, x2, y2 float64) []document.Point {
	return []document.Point{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}}
}

func image(id, page int, coords []document.Point) document.Element {
	return document.Element{
		ID: id, Category: document.CategoryFigure, Page: page, Coordinates: coords,
		ImageBase64: pngB64, ImageMIMEType: "image/png",
	}
}

func para(id, page int, text string, coords []document.Point) document.Element {
	return document.Element{
		ID: id, Category: document.CategoryParagraph, Page: page, Coordinates: coords,
		Content: document.Content{Text: text, HTML: "<p>" + text + "</p>"},
	}
}

func ids(elems []document.Element) []int {
	out := make([]int, len(elems))
	for i, e := range elems {
		out[i] = e.ID
	}
	return out
}

func TestIsComplexContentPattern(t *testing.T) {
	assert.False(t, IsComplexContentPattern(nil))
	assert.False(t, IsComplexContentPattern([]document.Element{para(1, 1, "a", nil)}))
	assert.False(t, IsComplexContentPattern([]document.Element{image(1, 1, nil)}))
	assert.True(t, IsComplexContentPattern([]document.Element{image(1, 1, nil), para(2, 3, "a", nil)}))
}

func TestDetectShortCircuit(t *testing.T) {
	in := []document.Element{
		para(3, 2, "second page", rect(0.1, 0.1, 0.9, 0.2)),
		para(1, 1, "first page", rect(0.1, 0.1, 0.9, 0.2)),
	}
	out := Detect(in)
	assert.Equal(t, in, out)

	imgs := []document.Element{image(2, 2, rect(0.1, 0.1, 0.3, 0.3)), image(1, 1, nil)}
	assert.Equal(t, imgs, Detect(imgs))
}

func TestDetectProximityTieBreak(t *testing.T) {
	img := image(1, 1, rect(0.1, 0.4, 0.3, 0.5))
	near := para(2, 1, "near", rect(0.35, 0.41, 0.9, 0.45))
	far := para(3, 1, "far", rect(0.35, 0.60, 0.9, 0.65))

	out := Detect([]document.Element{img, near, far})
	require.Len(t, out, 2)
	assert.Equal(t, document.CategoryCompositeTable, out[0].Category)
	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, "near", out[0].Content.Text)
	assert.Equal(t, far, out[1])
}

func TestDetectRightwardOnly(t *testing.T) {
	img := image(1, 1, rect(0.3, 0.1, 0.6, 0.3))
	below := para(2, 1, "caption below", rect(0.3, 0.12, 0.6, 0.15))
	left := para(3, 1, "left column", rect(0.05, 0.12, 0.25, 0.2))

	out := Detect([]document.Element{img, below, left})
	assert.Equal(t, []int{1, 2, 3}, ids(out))
	assert.Equal(t, document.CategoryFigure, out[0].Category, "same left edge is not to the right")
}

func TestDetectSkipsIneligibleCandidates(t *testing.T) {
	img := image(1, 1, rect(0.1, 0.1, 0.3, 0.3))
	blank := para(2, 1, "   ", rect(0.4, 0.1, 0.9, 0.2))
	table := document.Element{ID: 3, Category: document.CategoryTable, Page: 1,
		Content: document.Content{Text: "cells"}, Coordinates: rect(0.4, 0.1, 0.9, 0.2)}
	noBox := para(4, 1, "no box", nil)
	otherPage := para(5, 2, "other page", rect(0.4, 0.1, 0.9, 0.2))

	out := Detect([]document.Element{img, blank, table, noBox, otherPage})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(out))
	assert.Equal(t, document.CategoryFigure, out[0].Category)
}

func TestDetectMergedContent(t *testing.T) {
	img := image(7, 1, rect(0.1, 0.1, 0.4, 0.4))
	img.Content.Text = " chart ocr "
	img.OCREnhanced = true
	second := para(9, 1, " second ", rect(0.5, 0.3, 0.9, 0.35))
	first := para(8, 1, "first", rect(0.5, 0.2, 0.9, 0.25))

	out := Detect([]document.Element{img, second, first})
	require.Len(t, out, 1)
	c := out[0]
	assert.Equal(t, "chart ocr\nfirst\nsecond", c.Content.Text)
	assert.True(t, c.OCREnhanced)
	assert.Equal(t, img.Coordinates, c.Coordinates)
	assert.Equal(t, pngB64, c.ImageBase64)
	assert.Contains(t, c.Content.HTML, `src="data:image/png;base64,`+pngB64+`"`)
	assert.Contains(t, c.Content.HTML, "<pre>chart ocr\nfirst\nsecond</pre>")
	assert.Contains(t, c.Content.Markdown, "![Composite image](data:image/png;base64,"+pngB64+")")
	assert.Contains(t, c.Content.Markdown, "```\nchart ocr\nfirst\nsecond\n```")
}

func TestDetectPagesAscending(t *testing.T) {
	in := []document.Element{
		para(10, 3, "p3", rect(0.1, 0.1, 0.2, 0.2)),
		para(40, 1, "footer", rect(0.05, 0.9, 0.9, 0.95)),
		image(20, 1, rect(0.1, 0.1, 0.2, 0.2)),
		para(30, 2, "p2", rect(0.1, 0.1, 0.2, 0.2)),
	}
	assert.Equal(t, []int{20, 40, 30, 10}, ids(Detect(in)))
}

func TestDetectNoPageWithImageAndText(t *testing.T) {
	heading := document.Element{
		ID: 1, Category: document.CategoryHeading1, Page: 1,
		Content:     document.Content{HTML: "<h1>Title</h1>"},
		Coordinates: rect(0.1, 0.05, 0.9, 0.1),
	}
	in := []document.Element{
		para(3, 2, "second page", rect(0.1, 0.1, 0.9, 0.2)),
		heading,
		image(2, 1, rect(0.1, 0.2, 0.4, 0.5)),
	}
	require.True(t, IsComplexContentPattern(in))
	assert.Equal(t, in, Detect(in))

	ocrOnly := image(5, 1, rect(0.1, 0.2, 0.4, 0.5))
	ocrOnly.Content.Text = "chart ocr"
	ocrOnly.OCREnhanced = true
	lone := []document.Element{para(6, 2, "elsewhere", rect(0.5, 0.2, 0.9, 0.3)), ocrOnly}
	assert.Equal(t, lone, Detect(lone))
}

func TestMergeSkipsBlankAnchorText(t *testing.T) {
	img := image(1, 1, rect(0.1, 0.1, 0.3, 0.3))
	img.Content.Text = "   "
	img.OCREnhanced = true
	c := Merge(img, []document.Element{para(2, 1, " side ", rect(0.4, 0.1, 0.9, 0.2))})
	assert.Equal(t, "side", c.Content.Text)
	assert.True(t, c.OCREnhanced)
}

func TestDetectConservation(t *testing.T) {
	in := []document.Element{
		image(1, 1, rect(0.1, 0.1, 0.3, 0.3)),
		para(2, 1, "a", rect(0.35, 0.12, 0.9, 0.15)),
		para(3, 1, "b", rect(0.35, 0.2, 0.9, 0.25)),
		image(4, 1, rect(0.1, 0.15, 0.3, 0.35)),
		para(5, 1, "c", rect(0.05, 0.8, 0.9, 0.85)),
		image(6, 2, nil),
		para(7, 2, "d", rect(0.5, 0.1, 0.9, 0.2)),
		image(8, 2, rect(0.1, 0.5, 0.3, 0.7)),
		para(9, 2, "e", rect(0.5, 0.52, 0.9, 0.6)),
	}
	out := Detect(in)
	assert.LessOrEqual(t, len(out), len(in))

	seen := map[int]int{}
	for _, e := range out {
		if e.Category == document.CategoryCompositeTable {
			seen[e.ID]++
			for _, src := range in {
				if src.ID != e.ID && src.Category == document.CategoryParagraph && containsLine(e.Content.Text, src.Content.Text) {
					seen[src.ID]++
				}
			}
			continue
		}
		seen[e.ID]++
	}
	for _, e := range in {
		assert.Equal(t, 1, seen[e.ID], "element %d", e.ID)
	}
}

func containsLine(text, line string) bool {
	for _, l := range splitLines(text) {
		if l == line {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func TestDetectorCustomThreshold(t *testing.T) {
	img := image(1, 1, rect(0.1, 0.4, 0.3, 0.41))
	cand := para(2, 1, "x", rect(0.5, 0.6, 0.9, 0.65))

	assert.Len(t, Detect([]document.Element{img, cand}), 2)
	assert.Len(t, Detector{MinVerticalThreshold: 0.5}.Detect([]document.Element{img, cand}), 1)
}
