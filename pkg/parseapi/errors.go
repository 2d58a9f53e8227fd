package parseapi

import (
	"fmt"
	"net/http"
)

// ConfigurationError reports a provider that cannot be constructed,
// typically because a credential is missing.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s provider is not configured: %s", e.Provider, e.Reason)
}

// ProviderError is a non-2xx answer from a parsing provider.
type ProviderError struct {
	StatusCode int
	Reason     string // Reason phrase, defaults to the standard text for StatusCode
	URL        string
	Body       string // Excerpt of the response body
}

func (e *ProviderError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = http.StatusText(e.StatusCode)
	}
	kind := "Server"
	if e.StatusCode < 500 {
		kind = "Client"
	}
	return fmt.Sprintf("%s error '%d %s' for url '%s'", kind, e.StatusCode, reason, e.URL)
}
