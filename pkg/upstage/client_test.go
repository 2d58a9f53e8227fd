package upstage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/gardar/hybridparse/pkg/parseapi"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{APIKey: "  "}, nil)
	var cerr *parseapi.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, Name, cerr.Provider)
}

func TestParseSendsMultipartRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "document-parse", r.FormValue("model"))
		assert.Equal(t, "force", r.FormValue("ocr"))
		assert.Equal(t, "['table', 'figure', 'chart', 'equation']", r.FormValue("base64_encoding"))

		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		data, _ := io.ReadAll(file)
		assert.Equal(t, "%PDF-1.7", string(data))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"api":      "2.0",
			"elements": []any{map[string]any{"id": 0, "category": "paragraph"}},
		})
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "secret", URL: srv.URL, RequestsPerSecond: 100}, quiet())
	require.NoError(t, err)

	payload, err := c.Parse(context.Background(), parseapi.NewRequest("report.pdf", []byte("%PDF-1.7"), true))
	require.NoError(t, err)
	assert.Equal(t, "2.0", payload["api"])
	assert.Len(t, payload["elements"], 1)
}

func TestParseWithoutImageExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, present := r.MultipartForm.Value["base64_encoding"]
		assert.False(t, present)
		w.Write([]byte(`{"content": {"text": "x"}}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "k", URL: srv.URL}, quiet())
	require.NoError(t, err)
	_, err = c.Parse(context.Background(), parseapi.NewRequest("a.png", []byte("x"), false))
	require.NoError(t, err)
}

func TestParseErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "bad", URL: srv.URL}, quiet())
	require.NoError(t, err)

	_, err = c.Parse(context.Background(), parseapi.NewRequest("a.pdf", []byte("x"), false))
	var perr *parseapi.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
	assert.Equal(t, "Unauthorized", perr.Reason)
	assert.Contains(t, perr.Body, "invalid key")
	assert.Equal(t, "Client error '401 Unauthorized' for url '"+srv.URL+"'", err.Error())

	code, _ := parseapi.ClassifyError(err, language.English)
	assert.Equal(t, 401, code)
}

func TestParseBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "k", URL: srv.URL}, quiet())
	require.NoError(t, err)
	_, err = c.Parse(context.Background(), parseapi.NewRequest("a.pdf", []byte("x"), false))
	assert.ErrorContains(t, err, "failed to decode")
}
