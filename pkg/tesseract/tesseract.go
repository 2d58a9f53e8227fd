//go:build tesseract

// Package tesseract is a local parsing provider backed by the Tesseract OCR
// engine. It needs libtesseract and is compiled only with -tags tesseract.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/hocr"
	"github.com/gardar/hybridparse/pkg/parseapi"
)

// Provider runs Tesseract on image uploads and converts its hOCR output.
type Provider struct {
	cfg    Config
	logger *logrus.Logger
}

// New creates a provider
func New(cfg Config, logger *logrus.Logger) (*Provider, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	return &Provider{cfg: cfg, logger: logger}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Parse(ctx context.Context, req parseapi.Request) (map[string]any, error) {
	if !strings.HasPrefix(req.MIMEType, "image/") {
		return nil, fmt.Errorf("%s only accepts images, got %s", Name, req.MIMEType)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// gosseract clients are not safe for concurrent use.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(p.cfg.Languages...); err != nil {
		return nil, fmt.Errorf("failed to set languages: %w", err)
	}
	if err := client.SetImageFromBytes(req.Data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	out, err := client.HOCRText()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	doc, err := hocr.ParseHOCR([]byte(out))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tesseract output: %w", err)
	}
	p.logger.WithFields(logrus.Fields{
		"filename": req.Filename,
		"pages":    len(doc.Pages),
	}).Debug("Tesseract recognition finished")

	payload := hocr.ToPayload(&doc)
	payload["api"] = Name
	return payload, nil
}
