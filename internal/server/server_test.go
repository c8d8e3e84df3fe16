package server

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alttext/internal/logging"
	"alttext/internal/pipeline"
	jsonx "alttext/internal/shared/json"
)

type stubRunner struct {
	tasks   []pipeline.ImageTask
	results []pipeline.GenerationResult
	err     error
}

func (r *stubRunner) Run(_ context.Context, tasks []pipeline.ImageTask) ([]pipeline.GenerationResult, error) {
	r.tasks = tasks
	return r.results, r.err
}

func newTestServer(runner BatchRunner) *Server {
	cfg := DefaultConfig()
	cfg.EnableCORS = false
	return New(runner, cfg, logging.Nop())
}

func TestGenerateEndpoint(t *testing.T) {
	runner := &stubRunner{results: []pipeline.GenerationResult{{
		ImageID: "img-1",
		PerLanguage: map[string]pipeline.LanguageResult{
			"en": {AltText: "A red bicycle parked outdoors", ImageType: pipeline.TypeInformative},
		},
	}}}
	s := newTestServer(runner)

	body := `{
		"images": [{"id": "img-1", "data": "` + base64.StdEncoding.EncodeToString([]byte{0x89, 0x50}) + `", "mime_type": "image/png", "context": "cycling article"}],
		"languages": ["en", "it"]
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, runner.tasks, 1)
	assert.Equal(t, "img-1", runner.tasks[0].ID)
	assert.Equal(t, []byte{0x89, 0x50}, runner.tasks[0].Image)
	assert.Equal(t, []string{"en", "it"}, runner.tasks[0].Languages)

	var resp struct {
		Results []pipeline.GenerationResult `json:"results"`
	}
	require.NoError(t, jsonx.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "A red bicycle parked outdoors", resp.Results[0].PerLanguage["en"].AltText)
}

func TestGenerateRejectsMissingFields(t *testing.T) {
	s := newTestServer(&stubRunner{})

	for _, body := range []string{
		`{}`,
		`{"images": [], "languages": ["en"]}`,
		`{"images": [{"id": "a", "data": "AA=="}], "languages": []}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		s.Engine().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestGenerateRejectsBadBase64(t *testing.T) {
	s := newTestServer(&stubRunner{})

	body := `{"images": [{"id": "a", "data": "not-base64!!"}], "languages": ["en"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "base64")
}

func TestGenerateSystemicFailure(t *testing.T) {
	runner := &stubRunner{err: assert.AnError}
	s := newTestServer(runner)

	body := `{"images": [{"id": "a", "data": "AA=="}], "languages": ["en"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&stubRunner{})

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&stubRunner{})

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
