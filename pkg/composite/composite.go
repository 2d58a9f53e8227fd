// Package composite merges image elements with the text elements laid out
// beside them into single composite_table elements.
//
// Text is related to an image when its top edge is within
// max(image height, MinVerticalThreshold) of the image's top edge and it
// starts to the right of the image's left edge. Text below an image but not
// to its right is never merged.
package composite

import (
	"math"
	"sort"
	"strings"

	"github.com/gardar/hybridparse/pkg/document"
)

// DefaultMinVerticalThreshold is 50 units on a 1000-unit reference page,
// expressed in normalized page coordinates.
const DefaultMinVerticalThreshold = 50.0 / 1000.0

var textCategories = map[string]bool{
	document.CategoryParagraph: true,
	document.CategoryText:      true,
	document.CategoryCaption:   true,
}

// Detector finds and merges composite structures
type Detector struct {
	// MinVerticalThreshold is the smallest vertical distance accepted
	// regardless of image height. Zero means DefaultMinVerticalThreshold.
	MinVerticalThreshold float64
}

// IsComplexContentPattern reports whether elems contain at least one image
// and at least one element with text.
func IsComplexContentPattern(elems []document.Element) bool {
	hasImage, hasText := false, false
	for _, e := range elems {
		hasImage = hasImage || e.HasImage()
		hasText = hasText || e.HasText()
	}
	return hasImage && hasText
}

// Detect runs the detector with the default threshold.
func Detect(elems []document.Element) []document.Element {
	return Detector{}.Detect(elems)
}

// Detect returns a new element sequence in which each image with related text
// is replaced by one composite element and the related text is removed.
// Pages are emitted in ascending order. Input is returned unchanged when no
// page holds both an image and another element with text.
func (d Detector) Detect(elems []document.Element) []document.Element {
	if !IsComplexContentPattern(elems) {
		return elems
	}

	pages := make(map[int][]int)
	for i, e := range elems {
		pages[e.Page] = append(pages[e.Page], i)
	}
	if !anyMergeablePage(elems, pages) {
		return elems
	}
	order := make([]int, 0, len(pages))
	for p := range pages {
		order = append(order, p)
	}
	sort.Ints(order)

	out := make([]document.Element, 0, len(elems))
	for _, p := range order {
		out = append(out, d.detectPage(elems, pages[p])...)
	}
	return out
}

// anyMergeablePage reports whether some page has an image element and a
// different element carrying text.
func anyMergeablePage(elems []document.Element, pages map[int][]int) bool {
	for _, idx := range pages {
		images, texts := 0, 0
		for _, i := range idx {
			if elems[i].HasImage() {
				images++
			}
			if elems[i].HasText() {
				texts++
			}
		}
		if images == 0 || texts == 0 {
			continue
		}
		if images > 1 || texts > 1 {
			return true
		}
		// a lone image carrying the page's only text has no sibling
		for _, i := range idx {
			if elems[i].HasImage() && !elems[i].HasText() {
				return true
			}
		}
	}
	return false
}

// detectPage works on indexes so elements sharing an id stay distinct.
func (d Detector) detectPage(elems []document.Element, idx []int) []document.Element {
	consumed := make(map[int]bool, len(idx))
	var out []document.Element

	for _, i := range idx {
		img := elems[i]
		if !img.HasImage() || consumed[i] {
			continue
		}
		related := d.related(elems, idx, i, consumed)
		consumed[i] = true
		if len(related) == 0 {
			out = append(out, img)
			continue
		}

		texts := make([]document.Element, 0, len(related))
		for _, j := range related {
			consumed[j] = true
			texts = append(texts, elems[j])
		}
		out = append(out, Merge(img, texts))
	}

	for _, i := range idx {
		if !consumed[i] {
			out = append(out, elems[i])
		}
	}
	return out
}

func (d Detector) related(elems []document.Element, idx []int, anchor int, consumed map[int]bool) []int {
	imgBox, ok := elems[anchor].BoundingBox()
	if !ok {
		return nil
	}
	minThreshold := d.MinVerticalThreshold
	if minThreshold <= 0 {
		minThreshold = DefaultMinVerticalThreshold
	}
	threshold := math.Max(imgBox.Height(), minThreshold)

	var related []int
	for _, j := range idx {
		if j == anchor || consumed[j] {
			continue
		}
		cand := elems[j]
		if !textCategories[cand.Category] || cand.TrimmedText() == "" {
			continue
		}
		box, ok := cand.BoundingBox()
		if !ok {
			continue
		}
		near := math.Abs(box.TopLeft().Y-imgBox.TopLeft().Y) <= threshold
		right := box.TopLeft().X > imgBox.TopLeft().X
		if near && right {
			related = append(related, j)
		}
	}

	sort.SliceStable(related, func(a, b int) bool {
		return elems[related[a]].TopY() < elems[related[b]].TopY()
	})
	return related
}

// Merge builds the composite element for an image and its related text,
// which must already be in reading order.
func Merge(img document.Element, texts []document.Element) document.Element {
	lines := make([]string, 0, len(texts)+1)
	if s := img.TrimmedText(); img.OCREnhanced && s != "" {
		lines = append(lines, s)
	}
	for _, t := range texts {
		if s := t.TrimmedText(); s != "" {
			lines = append(lines, s)
		}
	}
	text := strings.Join(lines, "\n")

	return document.Element{
		ID:       img.ID,
		Category: document.CategoryCompositeTable,
		Content: document.Content{
			HTML:     compositeHTML(img, text),
			Markdown: compositeMarkdown(img, text),
			Text:     text,
		},
		Coordinates:   img.Coordinates,
		Page:          img.Page,
		ImageBase64:   img.ImageBase64,
		ImageMIMEType: img.ImageMIMEType,
		OCREnhanced:   img.OCREnhanced,
	}
}
