package document

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x1, y1, x2, y2 float64) []Point {
	return []Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
}

func TestNewBoundingBox(t *testing.T) {
	b, err := NewBoundingBox(box(0.1, 0.4, 0.3, 0.5))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, b.Width(), 1e-9)
	assert.InDelta(t, 0.1, b.Height(), 1e-9)
	assert.Equal(t, Point{0.1, 0.4}, b.TopLeft())
	assert.Equal(t, Point{0.3, 0.5}, b.BottomRight())

	_, err = NewBoundingBox(box(0, 0, 1, 1)[:3])
	assert.ErrorIs(t, err, ErrIncompleteBox)
}

func TestElementBoundingBoxAndTopY(t *testing.T) {
	e := Element{}
	_, ok := e.BoundingBox()
	assert.False(t, ok)
	assert.Equal(t, 0.0, e.TopY())

	e.Coordinates = box(0.2, 0.7, 0.4, 0.9)
	_, ok = e.BoundingBox()
	assert.True(t, ok)
	assert.Equal(t, 0.7, e.TopY())
}

func TestDataURIDefaultsToPNG(t *testing.T) {
	e := Element{ImageBase64: "AAAA"}
	assert.Equal(t, "data:image/png;base64,AAAA", e.DataURI())
	e.ImageMIMEType = "image/gif"
	assert.Equal(t, "data:image/gif;base64,AAAA", e.DataURI())
}

func TestRecordTransitions(t *testing.T) {
	doc := &ParsedDocument{API: "test"}
	outcomes := []func(r *Record){
		func(r *Record) { r.MarkCompleted(doc) },
		func(r *Record) { r.MarkFailed("[401] nope") },
		func(r *Record) { r.MarkFailed("") },
		func(r *Record) { r.MarkFailed("x"); r.MarkCompleted(doc) },
		func(r *Record) { r.MarkCompleted(doc); r.MarkFailed("late") },
	}

	for _, apply := range outcomes {
		r := &Record{Status: StatusPending}
		r.MarkProcessing()
		assert.False(t, r.IsTerminal())
		apply(r)

		require.True(t, r.IsTerminal())
		completed := r.Status == StatusCompleted
		failed := r.Status == StatusFailed
		assert.True(t, completed != failed)
		if completed {
			assert.NotNil(t, r.Parsed)
			assert.Empty(t, r.ErrorMessage)
			assert.True(t, r.IsParsed())
		} else {
			assert.Nil(t, r.Parsed)
			assert.NotEmpty(t, r.ErrorMessage)
			assert.False(t, r.IsParsed())
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("queued").Valid())
}

func TestSniffImageMIME(t *testing.T) {
	enc := func(b []byte) string { return base64.StdEncoding.EncodeToString(b) }
	webp := append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 4)...)

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"png", enc([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}), "image/png", true},
		{"jpeg", enc([]byte{0xFF, 0xD8, 0xFF, 0xE0}), "image/jpeg", true},
		{"gif", enc([]byte("GIF89a......")), "image/gif", true},
		{"bmp", enc([]byte("BM..........")), "image/bmp", true},
		{"webp", enc(webp), "image/webp", true},
		{"unknown", enc([]byte("hello world!")), "image/jpeg", true},
		{"invalid", "!!!not base64!!!", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SniffImageMIME(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocumentCounts(t *testing.T) {
	d := &ParsedDocument{Elements: []Element{
		{ImageBase64: "a", OCREnhanced: true},
		{ImageBase64: "b"},
		{Content: Content{Text: "t"}},
	}}
	assert.Equal(t, 2, d.ImageCount())
	assert.Equal(t, 1, d.OCREnhancedCount())
}
