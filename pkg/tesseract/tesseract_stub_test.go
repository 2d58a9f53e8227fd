//go:build !tesseract

package tesseract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/hybridparse/pkg/parseapi"
)

func TestNewReturnsConfigurationError(t *testing.T) {
	p, err := New(Config{}, nil)
	assert.Nil(t, p)
	var cerr *parseapi.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, Name, cerr.Provider)
	assert.Contains(t, cerr.Error(), "-tags tesseract")
}
