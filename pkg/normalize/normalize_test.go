package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/hybridparse/pkg/document"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestNormalizeElements(t *testing.T) {
	payload := decode(t, `{
		"api": "2.0",
		"model": "document-parse-250116",
		"content": {"html": "<p>all</p>", "markdown": "all", "text": "all"},
		"usage": {"pages": 2},
		"elements": [
			{"id": 0, "category": "heading1", "page": 1,
			 "content": {"html": "<h1>Title</h1>", "markdown": "# Title", "text": "Title"},
			 "coordinates": [{"x": 0.1, "y": 0.05}, {"x": 0.9, "y": 0.05}, {"x": 0.9, "y": 0.1}, {"x": 0.1, "y": 0.1}]},
			{"id": 1, "category": "figure", "page": 2,
			 "content": {"text": "chart text"},
			 "coordinates": [[0.1, 0.2], [0.5, 0.2], "bogus", [0.5, 0.4], [0.1, 0.4]],
			 "base64_encoding": {"data": "iVBORw0KGgo="}},
			{"id": 2, "category": "table", "base64_encoding": "", "content": "plain"},
			{"category": "equation", "base64_encoding": 42}
		]
	}`)

	doc, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "2.0", doc.API)
	assert.Equal(t, "document-parse-250116", doc.Model)
	assert.Equal(t, "all", doc.Content.Markdown)
	assert.Equal(t, float64(2), doc.Usage["pages"])
	require.Len(t, doc.Elements, 4)

	h := doc.Elements[0]
	assert.Equal(t, document.CategoryHeading1, h.Category)
	assert.Len(t, h.Coordinates, 4)
	assert.False(t, h.OCREnhanced)

	fig := doc.Elements[1]
	assert.Equal(t, 2, fig.Page)
	assert.Equal(t, "iVBORw0KGgo=", fig.ImageBase64)
	assert.Len(t, fig.Coordinates, 4, "unrecognized point dropped")
	assert.Equal(t, document.Point{X: 0.5, Y: 0.4}, fig.Coordinates[2])
	assert.True(t, fig.OCREnhanced)

	tbl := doc.Elements[2]
	assert.Equal(t, "plain", tbl.Content.Text)
	assert.False(t, tbl.HasImage())
	assert.False(t, tbl.OCREnhanced)

	eq := doc.Elements[3]
	assert.Equal(t, 0, eq.ID)
	assert.Equal(t, 1, eq.Page)
	assert.False(t, eq.HasImage())
}

func TestNormalizeDefaults(t *testing.T) {
	doc, err := Normalize(decode(t, `{"elements": [{}]}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultAPI, doc.API)
	assert.Equal(t, DefaultModel, doc.Model)
	require.Len(t, doc.Elements, 1)
	assert.Equal(t, document.CategoryUnknown, doc.Elements[0].Category)
	assert.Equal(t, 1, doc.Elements[0].Page)
	assert.NotNil(t, doc.Usage)
}

func TestNormalizeContentOnly(t *testing.T) {
	doc, err := Normalize(decode(t, `{"content": {"html": "<p>x</p>", "text": "x"}}`))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 1)
	e := doc.Elements[0]
	assert.Equal(t, 1, e.ID)
	assert.Equal(t, document.CategoryDocument, e.Category)
	assert.Equal(t, 1, e.Page)
	assert.Empty(t, e.Coordinates)
	assert.Equal(t, "x", e.Content.Text)

	doc, err = Normalize(decode(t, `{"content": "just text"}`))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 1)
	assert.Equal(t, "just text", doc.Elements[0].Content.Text)
	assert.Equal(t, "just text", doc.Content.Text)

	doc, err = Normalize(decode(t, `{"content": {"html": "<b>h</b>"}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"html": "<b>h</b>"}`, doc.Elements[0].Content.Text)
	assert.Empty(t, doc.Content.Text)
}

func TestNormalizeFields(t *testing.T) {
	doc, err := Normalize(decode(t, `{"elements": [], "fields": {"invoice_id": "A-1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "A-1", doc.Fields["invoice_id"])
	assert.Empty(t, doc.Elements)
}

func TestNormalizeNumericStrings(t *testing.T) {
	doc, err := Normalize(decode(t, `{"elements": [{"id": "4", "page": "2", "category": "paragraph",
		"coordinates": [{"x": "0.5", "y": " 0.25"}, ["0.75", 0.25]]}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 1)
	e := doc.Elements[0]
	assert.Equal(t, 4, e.ID)
	assert.Equal(t, 2, e.Page)
	assert.Equal(t, []document.Point{{X: 0.5, Y: 0.25}, {X: 0.75, Y: 0.25}}, e.Coordinates)
}

func TestNormalizeFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"elements not a list", `{"elements": {"a": 1}}`},
		{"element not an object", `{"elements": ["x"]}`},
		{"id not a number", `{"elements": [{"id": "one"}]}`},
		{"page fractional", `{"elements": [{"page": 1.5}]}`},
		{"page zero", `{"elements": [{"page": 0}]}`},
		{"page negative", `{"elements": [{"page": -2}]}`},
		{"content wrong type", `{"elements": [{"content": 7}]}`},
		{"content field wrong type", `{"elements": [{"content": {"text": 7}}]}`},
		{"coordinates not a list", `{"elements": [{"coordinates": "0,0"}]}`},
		{"coordinate not numeric", `{"elements": [{"coordinates": [{"x": "a", "y": 1}]}]}`},
		{"document content wrong type", `{"content": 12}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := decode(t, tt.payload)
			_, err := Normalize(payload)
			var rfe *ResponseFormatError
			require.ErrorAs(t, err, &rfe)
			assert.Equal(t, payload, rfe.Payload)
			assert.NotEmpty(t, rfe.Reason)
		})
	}

	_, err := Normalize(nil)
	assert.Error(t, err)
}
