// Package gdocai parses documents with Google Document AI.
//
// The Document AI response is converted into the same payload shape other
// providers return, so it flows through the normal reconstruction pipeline:
//
// - Paragraphs become "paragraph" elements with plain text and HTML
// - Tables become "table" elements with generated HTML, plus a cropped page
// image when image extraction is requested
// - Normalized bounding polygons become {x, y} coordinates
// - Form fields and custom extractor entities are merged into "fields"
//
// Authentication uses the credentials file from the configuration, falling
// back to the GOOGLE_APPLICATION_CREDENTIALS environment variable.
package gdocai

import (
	"context"
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/parseapi"
)

// Name is the provider name reported in parsed documents.
const Name = "google-documentai"

// Config identifies the Document AI processor to call
type Config struct {
	ProjectID       string `yaml:"project_id"`
	Location        string `yaml:"location"`
	ProcessorID     string `yaml:"processor_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Provider implements parseapi.Provider on top of Document AI
type Provider struct {
	cfg    Config
	logger *logrus.Logger
}

// New validates cfg and creates a provider.
func New(cfg Config, logger *logrus.Logger) (*Provider, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	switch {
	case cfg.ProjectID == "":
		return nil, &parseapi.ConfigurationError{Provider: Name, Reason: "project_id is required"}
	case cfg.ProcessorID == "":
		return nil, &parseapi.ConfigurationError{Provider: Name, Reason: "processor_id is required"}
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}
	return &Provider{cfg: cfg, logger: logger}, nil
}

func (p *Provider) Name() string { return Name }

// Parse sends the document to Document AI and returns the converted payload.
func (p *Provider) Parse(ctx context.Context, req parseapi.Request) (map[string]any, error) {
	_, payload, err := p.ParseDocument(ctx, req)
	return payload, err
}

// ParseDocument is Parse that also returns the Document proto as received.
func (p *Provider) ParseDocument(ctx context.Context, req parseapi.Request) (*documentaipb.Document, map[string]any, error) {
	doc, err := p.process(ctx, req.Data, req.MIMEType)
	if err != nil {
		return nil, nil, err
	}

	payload, err := Payload(doc, PayloadOptions{
		Model:         p.cfg.ProcessorID,
		ExtractImages: len(req.ImageCategories) > 0,
	})
	if err != nil {
		return doc, nil, fmt.Errorf("failed to convert Document AI response: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"filename": req.Filename,
		"pages":    len(doc.Pages),
	}).Debug("Document AI response converted")
	return doc, payload, nil
}
