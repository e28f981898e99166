package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGeneration("text", "ok", time.Second)
		m.IncToolResult("generateStory", "summary")
		m.IncPipelineRun("worksheet", "ok")
		m.IncJobRun("suggestions", "skipped")
	})

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/artifacts/{kind}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/stories", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)

	count := testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/api/v1/artifacts/{kind}", "418"))
	assert.Equal(t, 1.0, count)
}

func TestToolResultCounter(t *testing.T) {
	m := New()
	m.IncToolResult("explainConcept", "failure")
	m.IncToolResult("explainConcept", "failure")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toolResults.WithLabelValues("explainConcept", "failure")))
}
