// Package config loads the service configuration: a YAML file merged over
// defaults, then .env files and environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gardar/hybridparse/pkg/composite"
	"github.com/gardar/hybridparse/pkg/gdocai"
	"github.com/gardar/hybridparse/pkg/pipeline"
	"github.com/gardar/hybridparse/pkg/store"
	"github.com/gardar/hybridparse/pkg/tesseract"
	"github.com/gardar/hybridparse/pkg/upstage"
)

// Provider names accepted in parsing.provider
const (
	ProviderUpstage    = upstage.Name
	ProviderDocumentAI = "documentai"
	ProviderTesseract  = tesseract.Name
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Upload     UploadConfig     `yaml:"upload"`
	Parsing    ParsingConfig    `yaml:"parsing"`
	Upstage    upstage.Config   `yaml:"upstage"`
	DocumentAI gdocai.Config    `yaml:"documentai"`
	Tesseract  tesseract.Config `yaml:"tesseract"`
	LogLevel   string           `yaml:"log_level"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Dir     string `yaml:"dir"`
	Backend string `yaml:"backend"`
}

type UploadConfig struct {
	MaxFileSize int64 `yaml:"max_file_size"`
	ValidatePDF bool  `yaml:"validate_pdf"`
}

type ParsingConfig struct {
	Provider      string        `yaml:"provider"`
	Timeout       time.Duration `yaml:"timeout"`
	ExtractImages bool          `yaml:"extract_images"`
	Locale        string        `yaml:"locale"`
	// MinVerticalThreshold is the composite detector's floor, relative to
	// page height.
	MinVerticalThreshold float64 `yaml:"min_vertical_threshold"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8000},
		Storage: StorageConfig{Dir: "./storage", Backend: store.BackendSQLite},
		Upload: UploadConfig{
			MaxFileSize: pipeline.DefaultMaxFileSize,
			ValidatePDF: true,
		},
		Parsing: ParsingConfig{
			Provider:             ProviderUpstage,
			Timeout:              pipeline.DefaultTimeout,
			ExtractImages:        true,
			Locale:               "en",
			MinVerticalThreshold: composite.DefaultMinVerticalThreshold,
		},
		Upstage: upstage.Config{
			URL:     upstage.DefaultURL,
			Model:   upstage.DefaultModel,
			Timeout: upstage.DefaultTimeout,
		},
		DocumentAI: gdocai.Config{Location: "us"},
		Tesseract:  tesseract.Config{Languages: []string{"eng"}},
		LogLevel:   "info",
	}
}

// LoadConfig reads path (optional) over the defaults, applies .env files
// and environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// A missing .env is normal; variables already set win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("UPSTAGE_API_KEY", &c.Upstage.APIKey)
	str("UPSTAGE_API_URL", &c.Upstage.URL)
	str("STORAGE_DIR", &c.Storage.Dir)
	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("HOST", &c.Server.Host)
	str("LOG_LEVEL", &c.LogLevel)
	str("PARSE_PROVIDER", &c.Parsing.Provider)
	str("LOCALE", &c.Parsing.Locale)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.DocumentAI.CredentialsFile)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("MAX_FILE_SIZE"); ok && v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_FILE_SIZE %q: %w", v, err)
		}
		c.Upload.MaxFileSize = size
	}
	return nil
}

// Validate checks ranges and enumerations. Provider credentials are not
// required here; a provider that cannot be built fails each parse instead.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		errs = append(errs, errors.New("storage.dir is required"))
	}
	switch c.Storage.Backend {
	case store.BackendSQLite, store.BackendFile:
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q",
			store.BackendSQLite, store.BackendFile, c.Storage.Backend))
	}
	if c.Upload.MaxFileSize < pipeline.MinFileSize {
		errs = append(errs, fmt.Errorf("upload.max_file_size must be at least %d bytes", pipeline.MinFileSize))
	}
	switch c.Parsing.Provider {
	case ProviderUpstage, ProviderDocumentAI, ProviderTesseract:
	default:
		errs = append(errs, fmt.Errorf("parsing.provider must be one of %s, %s, %s; got %q",
			ProviderUpstage, ProviderDocumentAI, ProviderTesseract, c.Parsing.Provider))
	}
	if c.Parsing.Timeout <= 0 {
		errs = append(errs, errors.New("parsing.timeout must be positive"))
	}
	if c.Parsing.MinVerticalThreshold < 0 || c.Parsing.MinVerticalThreshold >= 1 {
		errs = append(errs, fmt.Errorf("parsing.min_vertical_threshold must be in [0, 1), got %g",
			c.Parsing.MinVerticalThreshold))
	}
	if c.Upstage.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("upstage.requests_per_second must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
