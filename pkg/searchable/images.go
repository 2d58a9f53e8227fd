package searchable

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type pageImage struct {
	data []byte
	kind string // fpdf image type: PNG, JPG or GIF
}

// preparePageImage returns data as-is when fpdf can embed it and re-encodes
// everything else (BMP, TIFF, WEBP) as PNG.
func preparePageImage(data []byte) (pageImage, error) {
	if len(data) == 0 {
		return pageImage{}, fmt.Errorf("image is empty")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return pageImage{}, fmt.Errorf("failed to decode image config: %w", err)
	}

	switch format {
	case "png":
		return pageImage{data: data, kind: "PNG"}, nil
	case "jpeg":
		return pageImage{data: data, kind: "JPG"}, nil
	case "gif":
		return pageImage{data: data, kind: "GIF"}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return pageImage{}, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return pageImage{}, fmt.Errorf("failed to re-encode %s image: %w", format, err)
	}
	return pageImage{data: buf.Bytes(), kind: "PNG"}, nil
}

func imageSize(data []byte) (float64, float64, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}
