package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitescribe/sitescribe/internal/scribe"
)

type staticStats struct {
	snap scribe.Snapshot
}

func (s staticStats) Snapshot() scribe.Snapshot { return s.snap }

func newTestServer() (*Server, staticStats) {
	stats := staticStats{snap: scribe.Snapshot{
		Total:       10,
		Succeeded:   7,
		Failed:      3,
		Words:       420,
		SuccessRate: 70.0,
		Failures:    map[string]int{"timeout": 2, "dns": 1},
	}}
	return NewServer(stats, zap.NewNop()), stats
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer()
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatusServesSnapshot(t *testing.T) {
	t.Parallel()

	server, stats := newTestServer()
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got scribe.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stats.snap, got)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer()
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer()
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
