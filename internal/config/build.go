package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/gdocai"
	"github.com/gardar/hybridparse/pkg/parseapi"
	"github.com/gardar/hybridparse/pkg/pipeline"
	"github.com/gardar/hybridparse/pkg/store"
	"github.com/gardar/hybridparse/pkg/tesseract"
	"github.com/gardar/hybridparse/pkg/upstage"
)

// NewLogger creates a text logger on stderr at level; unknown levels fall
// back to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// NewProvider builds the configured parsing provider. A provider that lacks
// credentials yields (nil, nil) with a warning, so uploads keep working and
// each parse is recorded as a configuration failure.
func (c *Config) NewProvider(logger *logrus.Logger) (parseapi.Provider, error) {
	var (
		p   parseapi.Provider
		err error
	)
	switch c.Parsing.Provider {
	case ProviderUpstage:
		var client *upstage.Client
		if client, err = upstage.New(c.Upstage, logger); err == nil {
			p = client
		}
	case ProviderDocumentAI:
		var dai *gdocai.Provider
		if dai, err = gdocai.New(c.DocumentAI, logger); err == nil {
			p = dai
		}
	case ProviderTesseract:
		var tp *tesseract.Provider
		if tp, err = tesseract.New(c.Tesseract, logger); err == nil {
			p = tp
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Parsing.Provider)
	}

	var cerr *parseapi.ConfigurationError
	if errors.As(err, &cerr) {
		logger.WithError(err).Warn("Parsing provider is not configured; documents will fail to parse")
		return nil, nil
	}
	return p, err
}

// Open creates the store, the uploads directory and a processor around
// provider. The returned store must be closed by the caller.
func (c *Config) Open(logger *logrus.Logger, provider parseapi.Provider, background bool) (*pipeline.Processor, store.Store, error) {
	if err := os.MkdirAll(c.Storage.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	st, err := store.Open(c.Storage.Backend, c.Storage.Dir, logger)
	if err != nil {
		return nil, nil, err
	}
	uploads, err := store.NewUploads(filepath.Join(c.Storage.Dir, "uploads"))
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	proc, err := pipeline.New(pipeline.Options{
		Store:                st,
		Uploads:              uploads,
		Provider:             provider,
		Logger:               logger,
		Language:             parseapi.MatchLanguage(c.Parsing.Locale),
		MaxFileSize:          c.Upload.MaxFileSize,
		Timeout:              c.Parsing.Timeout,
		ExtractImages:        c.Parsing.ExtractImages,
		ValidatePDF:          c.Upload.ValidatePDF,
		MinVerticalThreshold: c.Parsing.MinVerticalThreshold,
		Background:           background,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return proc, st, nil
}
