package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing, which keeps tests free of registry setup.
type Metrics struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	toolResults        *prometheus.CounterVec
	pipelineRuns       *prometheus.CounterVec
	jobRuns            *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sahayak_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sahayak_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sahayak_generation_duration_seconds",
		Help:    "Latency of generation backend calls",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"operation", "outcome"})

	toolResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sahayak_tool_results_total",
		Help: "Tool invocations by tool and result kind",
	}, []string{"tool", "result"})

	pipelineRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sahayak_pipeline_runs_total",
		Help: "Upload-triggered pipeline runs by outcome",
	}, []string{"pipeline", "outcome"})

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sahayak_scheduled_teacher_runs_total",
		Help: "Per-teacher scheduled job runs by outcome",
	}, []string{"job", "outcome"})

	registry.MustRegister(
		requestDuration, requestTotal, generationDuration, toolResults, pipelineRuns, jobRuns,
		collectors.NewGoCollector(),
	)

	return &Metrics{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		generationDuration: generationDuration,
		toolResults:        toolResults,
		pipelineRuns:       pipelineRuns,
		jobRuns:            jobRuns,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{"method": r.Method, "route": route, "status": strconv.Itoa(status)}
		m.requestTotal.With(labels).Inc()
		m.requestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveGeneration(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

func (m *Metrics) IncToolResult(tool, result string) {
	if m == nil {
		return
	}
	m.toolResults.WithLabelValues(tool, result).Inc()
}

func (m *Metrics) IncPipelineRun(pipeline, outcome string) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(pipeline, outcome).Inc()
}

func (m *Metrics) IncJobRun(job, outcome string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}
