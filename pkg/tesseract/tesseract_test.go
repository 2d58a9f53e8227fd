//go:build tesseract

package tesseract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/hybridparse/pkg/parseapi"
)

func TestParseRejectsPDF(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"eng"}, p.cfg.Languages)

	_, err = p.Parse(context.Background(), parseapi.NewRequest("a.pdf", []byte("%PDF"), false))
	assert.ErrorContains(t, err, "only accepts images")
}
