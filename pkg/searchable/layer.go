package searchable

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/hybridparse/pkg/hocr"
)

// drawTextLayer writes every word of page into its own layer.
func drawTextLayer(
	pdf *fpdf.Fpdf,
	page hocr.Page,
	pageNum int,
	transform func(x, y float64) (float64, float64),
	cfg Config,
) error {
	layer := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", cfg.LayerName, pageNum), true)
	pdf.BeginLayer(layer)
	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
	if cfg.Debug {
		pdf.SetTextColor(255, 0, 0)
	} else {
		pdf.SetAlpha(0.0, "Normal")
	}

	// Core fonts only cover Latin-1; other runes are replaced.
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	strict := charmap.ISO8859_1.NewEncoder()

	words, lossy := 0, 0
	for _, par := range page.AllParagraphs() {
		for _, line := range par.Lines {
			for _, word := range line.Words {
				text, err := strict.String(word.Text)
				if err != nil {
					lossy++
					text, _ = enc.String(word.Text)
				}
				drawWord(pdf, word, text, transform, cfg)
				words++
			}
		}
	}

	pdf.EndLayer()
	if pdf.Err() {
		return pdf.Error()
	}

	log := cfg.logger()
	if lossy > 0 {
		log.WithFields(logrus.Fields{"page": pageNum, "words": lossy}).
			Warn("Some words are not representable in Latin-1 and were replaced")
	}
	logPageDone(log, pageNum, words)
	return nil
}

// drawWord stretches text horizontally to fill the word's box.
func drawWord(pdf *fpdf.Fpdf, word hocr.Word, text string,
	transform func(x, y float64) (float64, float64), cfg Config) {

	x, y := transform(word.BBox.X1, word.BBox.Y1)
	x2, _ := transform(word.BBox.X2, word.BBox.Y1)
	width := x2 - x
	if width <= 0 || text == "" {
		return
	}

	if sw := pdf.GetStringWidth(text); sw > 0 {
		pdf.SetFontSize(cfg.Font.Size * width / sw)
	}
	fontSize, _ := pdf.GetFontSize()
	baseline := y + fontSize*cfg.Font.AscentRatio

	pdf.Text(x, baseline, text)
	pdf.SetFontSize(cfg.Font.Size)

	if cfg.Debug {
		pdf.Rect(x, y, width, word.BBox.Height(), "D")
	}
}
