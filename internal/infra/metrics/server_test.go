package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticJobCounter int

func (c staticJobCounter) ActiveCount() int { return int(c) }

func TestHealthzReportsActiveJobs(t *testing.T) {
	mux := newServeMux(staticJobCounter(3))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["active_jobs"])
}

func TestMetricsEndpointExposesGauges(t *testing.T) {
	mux := newServeMux(staticJobCounter(0))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dance_analysis_active_jobs")
	assert.Contains(t, rec.Body.String(), "dance_analysis_queue_depth")
}
