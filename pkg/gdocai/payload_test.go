package gdocai

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/hybridparse/pkg/document"
	"github.com/gardar/hybridparse/pkg/normalize"
)

func anchor(start, end int64) *documentaipb.Document_TextAnchor {
	return &documentaipb.Document_TextAnchor{
		TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
	}
}

func normBox(x1, y1, x2, y2 float32) *documentaipb.BoundingPoly {
	return &documentaipb.BoundingPoly{NormalizedVertices: []*documentaipb.NormalizedVertex{
		{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
	}}
}

func layout(start, end int64, poly *documentaipb.BoundingPoly) *documentaipb.Document_Page_Layout {
	return &documentaipb.Document_Page_Layout{TextAnchor: anchor(start, end), BoundingPoly: poly}
}

func pagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// Text offsets: paragraph 0-11, form field 12-21, table cells 22-25.
func sampleDoc(t *testing.T) *documentaipb.Document {
	text := "Hello world\nName: Ada\nA B\n"
	return &documentaipb.Document{
		Text: text,
		Pages: []*documentaipb.Document_Page{{
			PageNumber: 1,
			Dimension:  &documentaipb.Document_Page_Dimension{Width: 100, Height: 200},
			Image:      &documentaipb.Document_Page_Image{Content: pagePNG(t), MimeType: "image/png"},
			Paragraphs: []*documentaipb.Document_Page_Paragraph{
				{Layout: layout(0, 11, normBox(0.1, 0.1, 0.9, 0.15))},
				{Layout: layout(0, 0, nil)},
			},
			Tables: []*documentaipb.Document_Page_Table{{
				Layout: layout(22, 25, normBox(0.1, 0.5, 0.5, 0.6)),
				HeaderRows: []*documentaipb.Document_Page_Table_TableRow{{
					Cells: []*documentaipb.Document_Page_Table_TableCell{
						{Layout: layout(22, 23, nil)}, {Layout: layout(24, 25, nil), ColSpan: 2},
					},
				}},
			}},
			FormFields: []*documentaipb.Document_Page_FormField{{
				FieldName:  layout(12, 17, nil),
				FieldValue: layout(18, 21, nil),
			}},
		}},
		Entities: []*documentaipb.Document_Entity{
			{Type: "invoice", MentionText: "INV-1", Properties: []*documentaipb.Document_Entity{
				{Type: "total", MentionText: "10"},
			}},
			{Type: "Name", MentionText: "ignored"},
		},
	}
}

func TestPayloadNormalizes(t *testing.T) {
	payload, err := Payload(sampleDoc(t), PayloadOptions{Model: "ocr-proc", ExtractImages: true})
	require.NoError(t, err)

	doc, err := normalize.Normalize(payload)
	require.NoError(t, err)
	assert.Equal(t, Name, doc.API)
	assert.Equal(t, "ocr-proc", doc.Model)
	require.Len(t, doc.Elements, 2)

	para := doc.Elements[0]
	assert.Equal(t, document.CategoryParagraph, para.Category)
	assert.Equal(t, "Hello world", para.Content.Text)
	assert.Equal(t, "<p>Hello world</p>", para.Content.HTML)
	require.Len(t, para.Coordinates, 4)
	assert.InDelta(t, 0.1, para.Coordinates[0].Y, 1e-6)

	table := doc.Elements[1]
	assert.Equal(t, document.CategoryTable, table.Category)
	assert.Equal(t, 1, table.ID)
	assert.Equal(t, `<table><thead><tr><th>A</th><th colspan="2">B</th></tr></thead><tbody></tbody></table>`, table.Content.HTML)
	assert.Equal(t, "A\tB", table.Content.Text)
	require.True(t, table.HasImage())
	assert.True(t, table.OCREnhanced)
	mime, ok := document.SniffImageMIME(table.ImageBase64)
	assert.True(t, ok)
	assert.Equal(t, "image/png", mime)

	assert.Equal(t, "Ada", doc.Fields["Name"])
	invoice, ok := doc.Fields["invoice"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INV-1", invoice["_value"])
	assert.Equal(t, "10", invoice["total"])
}

func TestPayloadWithoutImages(t *testing.T) {
	payload, err := Payload(sampleDoc(t), PayloadOptions{})
	require.NoError(t, err)
	doc, err := normalize.Normalize(payload)
	require.NoError(t, err)
	assert.False(t, doc.Elements[1].HasImage())
	assert.Equal(t, normalize.DefaultModel, doc.Model)
}

func TestPayloadAbsoluteVertices(t *testing.T) {
	l := &documentaipb.Document_Page_Layout{BoundingPoly: &documentaipb.BoundingPoly{
		Vertices: []*documentaipb.Vertex{{X: 10, Y: 20}, {X: 50, Y: 20}, {X: 50, Y: 40}, {X: 10, Y: 40}},
	}}
	coords := layoutCoordinates(l, &documentaipb.Document_Page_Dimension{Width: 100, Height: 200})
	require.Len(t, coords, 4)
	assert.Equal(t, map[string]any{"x": 0.1, "y": 0.1}, coords[0])
	assert.Empty(t, layoutCoordinates(nil, nil))
}

func TestNewRequiresProcessor(t *testing.T) {
	_, err := New(Config{ProjectID: "p"}, nil)
	assert.Error(t, err)
	p, err := New(Config{ProjectID: "p", ProcessorID: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "us", p.cfg.Location)
	assert.Equal(t, "projects/p/locations/us/processors/x", p.cfg.ProcessorName())

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	assert.Len(t, p.cfg.clientOptions(), 1)
	p.cfg.CredentialsFile = "creds.json"
	assert.Len(t, p.cfg.clientOptions(), 2)
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(&documentaipb.Document{Text: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text": "hi"}`, out)

	out, err = ToJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, out)
}
