package searchable

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/hybridparse/pkg/hocr"
)

func createFromImages(layout *hocr.HOCR, images []pageImage, cfg Config) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")

	for i, page := range layout.Pages {
		w, h := page.BBox.Width(), page.BBox.Height()
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		name := fmt.Sprintf("img%d", i)
		opts := fpdf.ImageOptions{ImageType: images[i].kind}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(images[i].data))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

		// Image pages are laid out in pixels; one pixel is one point.
		if err := drawTextLayer(pdf, page, i+1, identity, cfg); err != nil {
			return nil, fmt.Errorf("failed to draw text layer for page %d: %w", i+1, err)
		}
	}
	return output(pdf)
}

func overlayPDF(data []byte, layout *hocr.HOCR, cfg Config) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))

	for i, page := range layout.Pages {
		w, h := page.BBox.Width(), page.BBox.Height()
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		tpl := importer.ImportPageFromStream(pdf, &rs, i+1, "/MediaBox")
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, 0)

		if err := drawTextLayer(pdf, page, i+1, identity, cfg); err != nil {
			return nil, fmt.Errorf("failed to draw text layer for page %d: %w", i+1, err)
		}
	}
	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func identity(x, y float64) (float64, float64) { return x, y }
