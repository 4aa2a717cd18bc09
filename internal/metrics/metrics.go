// Package metrics exposes Prometheus instrumentation for the HTTP API and the search engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portalsearch"

// Search outcomes used as the "outcome" label.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Collection searches by collection and outcome",
		},
		[]string{"collection", "outcome"},
	)

	searchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Matching records per successful search, before pagination",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
		[]string{"collection"},
	)

	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_milliseconds",
			Help:      "Engine time per collection search in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
		[]string{"collection"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal, searchesTotal, searchResults, searchDuration)
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch records one collection search.
func ObserveSearch(collection string, totalCount int, elapsedMs float64, failed bool) {
	if failed {
		searchesTotal.WithLabelValues(collection, OutcomeError).Inc()
		return
	}
	searchesTotal.WithLabelValues(collection, OutcomeOK).Inc()
	searchResults.WithLabelValues(collection).Observe(float64(totalCount))
	searchDuration.WithLabelValues(collection).Observe(elapsedMs)
}

// Middleware records HTTP request duration and count.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			status := strconv.Itoa(ww.status)
			// Route patterns keep {collection} unexpanded, bounding label cardinality.
			path := "unknown"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				path = normalizePath(rctx.RoutePattern())
			}
			httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

func normalizePath(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Flush lets compression and streaming middleware flush through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
