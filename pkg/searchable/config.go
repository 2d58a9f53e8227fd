package searchable

import (
	"github.com/sirupsen/logrus"
)

// Config holds options for building searchable PDFs.
type Config struct {
	Debug     bool   // draw the text layer in red with word boxes
	Force     bool   // reapply even if the PDF already has a text layer
	LayerName string // base layer name; " (Page N)" is appended per page
	Font      FontConfig
	Logger    *logrus.Logger
}

// DefaultConfig returns the configuration used by the HTTP API and CLI.
func DefaultConfig() Config {
	return Config{
		LayerName: "OCR Text",
		Font:      DefaultFont,
	}
}

// FontConfig controls how the invisible text is sized and placed.
type FontConfig struct {
	Name        string
	Style       string
	Size        float64
	AscentRatio float64 // baseline offset as a fraction of the font size
}

// DefaultFont is Helvetica, one of the PDF core fonts.
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Size:        10,
	AscentRatio: 0.718,
}

func (c Config) logger() *logrus.Logger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
