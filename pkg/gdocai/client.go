package gdocai

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// ProcessorName is the full resource name of the configured processor.
func (c Config) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

func (c Config) clientOptions() []option.ClientOption {
	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", c.Location)),
	}
	creds := c.CredentialsFile
	if creds == "" {
		creds = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

// process sends the raw bytes to the processor and returns the Document proto.
// A fresh client is opened per call; uploads are parsed one at a time per document.
func (p *Provider) process(ctx context.Context, data []byte, mimeType string) (*documentaipb.Document, error) {
	client, err := documentai.NewDocumentProcessorClient(ctx, p.cfg.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer client.Close()

	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "application/pdf"
	}
	resp, err := client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: p.cfg.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: data, MimeType: mimeType},
		},
		SkipHumanReview: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	return resp.Document, nil
}
