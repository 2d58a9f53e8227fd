// Package upstage is a parsing provider for the Upstage document-parse API.
package upstage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/gardar/hybridparse/pkg/parseapi"
)

const (
	Name           = "upstage"
	DefaultURL     = "https://api.upstage.ai/v1/document-digitization"
	DefaultModel   = "document-parse"
	DefaultTimeout = 600 * time.Second
)

// maxErrorBody is how much of a failed response body is kept.
const maxErrorBody = 2048

// Config configures the client
type Config struct {
	APIKey  string        `yaml:"api_key"`
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
	// RequestsPerSecond throttles outbound calls; zero disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Client calls the document-parse endpoint
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// New creates a client. It fails when no API key is configured.
func New(cfg Config, logger *logrus.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &parseapi.ConfigurationError{Provider: Name, Reason: "UPSTAGE_API_KEY is required"}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

func (c *Client) Name() string { return Name }

// Parse uploads the document in a single request covering every page.
func (c *Client) Parse(ctx context.Context, req parseapi.Request) (map[string]any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	body, contentType, err := c.buildForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", contentType)

	c.logger.WithFields(logrus.Fields{
		"filename": req.Filename,
		"size":     len(req.Data),
	}).Info("Calling Upstage API")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call Upstage API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &parseapi.ProviderError{
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
			URL:        c.cfg.URL,
			Body:       string(excerpt),
		}
	}

	var payload map[string]any
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode Upstage response: %w", err)
	}
	return payload, nil
}

func (c *Client) buildForm(req parseapi.Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = parseapi.ContentTypeForFilename(req.Filename)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename=%q`, req.Filename))
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}

	fields := map[string]string{"model": c.cfg.Model}
	if req.ForceOCR {
		fields["ocr"] = "force"
	}
	if len(req.ImageCategories) > 0 {
		fields["base64_encoding"] = categoryList(req.ImageCategories)
	}
	for _, k := range []string{"model", "ocr", "base64_encoding"} {
		if v, ok := fields[k]; ok {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("failed to write form field %s: %w", k, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// categoryList renders categories the way the API expects: ['a', 'b'].
func categoryList(categories []string) string {
	quoted := make([]string, len(categories))
	for i, c := range categories {
		quoted[i] = "'" + c + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// reasonPhrase strips the numeric code from resp.Status ("401 Unauthorized").
func reasonPhrase(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
