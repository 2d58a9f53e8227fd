// Package normalize converts raw parsing-provider payloads into documents.
//
// Providers have shipped several encodings over time; both {x,y} objects and
// [x,y] pairs are accepted for coordinates, and image data may be a bare
// base64 string or an object with a "data" field.
package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/gardar/hybridparse/pkg/document"
)

const (
	DefaultAPI   = "upstage-document-parse"
	DefaultModel = "document-parse"
)

// Normalize validates payload and builds a parsed document from it.
// Elements carrying both image data and text are flagged as OCR enhanced.
func Normalize(payload map[string]any) (*document.ParsedDocument, error) {
	if payload == nil {
		return nil, formatErr(payload, "empty payload")
	}

	doc := &document.ParsedDocument{
		API:   stringOr(payload["api"], DefaultAPI),
		Model: stringOr(payload["model"], DefaultModel),
		Usage: map[string]any{},
	}

	if usage, ok := payload["usage"].(map[string]any); ok {
		doc.Usage = usage
	}
	if fields, ok := payload["fields"].(map[string]any); ok && len(fields) > 0 {
		doc.Fields = fields
	}

	content, err := documentContent(payload)
	if err != nil {
		return nil, err
	}
	doc.Content = content

	rawElems, hasElems := payload["elements"]
	switch {
	case hasElems && rawElems != nil:
		list, ok := rawElems.([]any)
		if !ok {
			return nil, formatErr(payload, "elements is %T, want a list", rawElems)
		}
		doc.Elements = make([]document.Element, 0, len(list))
		for i, raw := range list {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, formatErr(payload, "element %d is %T, want an object", i, raw)
			}
			elem, err := parseElement(m)
			if err != nil {
				return nil, formatErr(payload, "element %d: %v", i, err)
			}
			doc.Elements = append(doc.Elements, elem)
		}
	case payload["content"] != nil:
		doc.Elements = []document.Element{synthesizeElement(payload["content"])}
	default:
		doc.Elements = []document.Element{}
	}

	markOCREnhanced(doc.Elements)
	return doc, nil
}

func markOCREnhanced(elems []document.Element) {
	for i := range elems {
		elems[i].OCREnhanced = elems[i].HasImage() && elems[i].HasText()
	}
}

func documentContent(payload map[string]any) (document.Content, error) {
	switch c := payload["content"].(type) {
	case nil:
		return document.Content{}, nil
	case string:
		return document.Content{Text: c}, nil
	case map[string]any:
		return contentFromMap(c)
	default:
		return document.Content{}, formatErr(payload, "content is %T, want an object or string", c)
	}
}

// synthesizeElement wraps a document-level content value into the single
// element of a document the provider did not break down.
func synthesizeElement(raw any) document.Element {
	elem := document.Element{
		ID:          1,
		Category:    document.CategoryDocument,
		Page:        1,
		Coordinates: []document.Point{},
	}
	switch c := raw.(type) {
	case string:
		elem.Content.Text = c
	case map[string]any:
		elem.Content, _ = contentFromMap(c)
		if _, ok := c["text"]; !ok {
			if b, err := json.Marshal(c); err == nil {
				elem.Content.Text = string(b)
			}
		}
	}
	return elem
}

func parseElement(m map[string]any) (document.Element, error) {
	var (
		elem = document.Element{Category: document.CategoryUnknown, Page: 1}
		err  error
	)

	if v, ok := m["id"]; ok && v != nil {
		if elem.ID, err = toInt(v); err != nil {
			return elem, fmt.Errorf("id: %w", err)
		}
	}
	if v, ok := m["page"]; ok && v != nil {
		if elem.Page, err = toInt(v); err != nil {
			return elem, fmt.Errorf("page: %w", err)
		}
		if elem.Page < 1 {
			return elem, fmt.Errorf("page %d is below 1", elem.Page)
		}
	}
	if v, ok := m["category"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return elem, fmt.Errorf("category is %T, want a string", v)
		}
		elem.Category = s
	}

	switch c := m["content"].(type) {
	case nil:
	case string:
		elem.Content.Text = c
	case map[string]any:
		if elem.Content, err = contentFromMap(c); err != nil {
			return elem, err
		}
	default:
		return elem, fmt.Errorf("content is %T, want an object or string", c)
	}

	if elem.Coordinates, err = parseCoordinates(m["coordinates"]); err != nil {
		return elem, err
	}
	elem.ImageBase64 = imageData(m["base64_encoding"])
	return elem, nil
}

func contentFromMap(c map[string]any) (document.Content, error) {
	var out document.Content
	for key, dst := range map[string]*string{"html": &out.HTML, "markdown": &out.Markdown, "text": &out.Text} {
		switch v := c[key].(type) {
		case nil:
		case string:
			*dst = v
		default:
			return out, fmt.Errorf("content.%s is %T, want a string", key, v)
		}
	}
	return out, nil
}

// parseCoordinates accepts {x,y} objects and [x,y] pairs. Points in any other
// shape are dropped; a non-list value is an error.
func parseCoordinates(raw any) ([]document.Point, error) {
	if raw == nil {
		return []document.Point{}, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("coordinates is %T, want a list", raw)
	}

	points := make([]document.Point, 0, len(list))
	for _, c := range list {
		var xv, yv any
		switch p := c.(type) {
		case map[string]any:
			x, hasX := p["x"]
			y, hasY := p["y"]
			if !hasX || !hasY {
				continue
			}
			xv, yv = x, y
		case []any:
			if len(p) < 2 {
				continue
			}
			xv, yv = p[0], p[1]
		default:
			continue
		}

		x, err := toFloat(xv)
		if err != nil {
			return nil, fmt.Errorf("coordinate x: %w", err)
		}
		y, err := toFloat(yv)
		if err != nil {
			return nil, fmt.Errorf("coordinate y: %w", err)
		}
		points = append(points, document.Point{X: x, Y: y})
	}
	return points, nil
}

func imageData(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		s, _ := v["data"].(string)
		return s
	}
	return ""
}
