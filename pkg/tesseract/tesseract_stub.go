//go:build !tesseract

// Package tesseract is a local parsing provider backed by the Tesseract OCR
// engine.
//
// This is the stub used when the "tesseract" build tag is not set. Rebuild
// with -tags tesseract (libtesseract required) to enable it.
package tesseract

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/parseapi"
)

// ErrNotEnabled is returned when the provider was not compiled in.
var ErrNotEnabled = errors.New("tesseract support not enabled; rebuild with -tags tesseract")

type Provider struct{}

// New always fails in builds without the tesseract tag.
func New(Config, *logrus.Logger) (*Provider, error) {
	return nil, &parseapi.ConfigurationError{Provider: Name, Reason: ErrNotEnabled.Error()}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Parse(context.Context, parseapi.Request) (map[string]any, error) {
	return nil, ErrNotEnabled
}
