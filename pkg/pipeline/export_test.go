package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/hybridparse/pkg/searchable"
)

func scanPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y * 2), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestExports(t *testing.T) {
	p, _ := newProcessor(t, &fakeProvider{payload: twoPagePayload()}, false)
	ctx := context.Background()

	rec, err := p.Upload(ctx, Upload{Filename: "scan.png", Data: scanPNG(t)})
	require.NoError(t, err)
	require.True(t, rec.IsParsed())

	out, err := p.HOCR(ctx, rec.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `title="bbox 0 0 200 100; ppageno 0"`)
	assert.Contains(t, out, `title="bbox 0 0 1000 1000; ppageno 1"`)
	assert.Contains(t, out, ">Second</span>")

	pdf, err := p.SearchablePDF(ctx, rec.ID, searchable.DefaultConfig())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestExportErrors(t *testing.T) {
	p, _ := newProcessor(t, &fakeProvider{err: errors.New("boom")}, false)
	ctx := context.Background()

	_, err := p.HOCR(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	rec, err := p.Upload(ctx, upload("doc.png"))
	require.NoError(t, err)
	_, err = p.SearchablePDF(ctx, rec.ID, searchable.DefaultConfig())
	assert.ErrorIs(t, err, ErrNotParsed)
	_, err = p.HOCR(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotParsed)
}
