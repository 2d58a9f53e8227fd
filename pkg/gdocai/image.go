package gdocai

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// pageImage is the decoded rendering Document AI returns for a page
type pageImage struct {
	img image.Image
}

func decodePageImage(page *documentaipb.Document_Page) (*pageImage, error) {
	content := page.GetImage().GetContent()
	if len(content) == 0 {
		return nil, nil
	}
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}
	return &pageImage{img: img}, nil
}

// cropBase64 cuts the region spanned by normalized coordinates out of the
// page image and returns it as base64 PNG.
func (p *pageImage) cropBase64(coords []any) (string, error) {
	if len(coords) < 4 {
		return "", fmt.Errorf("region needs 4 points")
	}
	tl, _ := coords[0].(map[string]any)
	br, _ := coords[2].(map[string]any)
	x1, _ := tl["x"].(float64)
	y1, _ := tl["y"].(float64)
	x2, _ := br["x"].(float64)
	y2, _ := br["y"].(float64)

	b := p.img.Bounds()
	rect := image.Rect(
		b.Min.X+int(x1*float64(b.Dx())+0.5),
		b.Min.Y+int(y1*float64(b.Dy())+0.5),
		b.Min.X+int(x2*float64(b.Dx())+0.5),
		b.Min.Y+int(y2*float64(b.Dy())+0.5),
	).Intersect(b)
	if rect.Empty() {
		return "", fmt.Errorf("region is outside the page image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), p.img, rect.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", fmt.Errorf("failed to encode crop: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
