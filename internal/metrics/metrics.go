package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. It implements the observer
// interfaces of the tour, cache, profile and audio packages.
type Metrics struct {
	gatherer prometheus.Gatherer

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	tourResolutions    *prometheus.CounterVec
	generationAttempts *prometheus.CounterVec
	cacheLookups       *prometheus.CounterVec
	profileSyncs       *prometheus.CounterVec
	audioRequests      *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,

		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "citywalk_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "citywalk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		tourResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "citywalk_tour_resolutions_total",
			Help: "Tour requests by the stage that produced the answer",
		}, []string{"stage"}),

		generationAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "citywalk_generation_attempts_total",
			Help: "Tour generation attempts by outcome",
		}, []string{"outcome"}),

		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "citywalk_cache_lookups_total",
			Help: "Cache lookups by store and result",
		}, []string{"store", "result"}),

		profileSyncs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "citywalk_profile_syncs_total",
			Help: "Profile reconciles by outcome",
		}, []string{"outcome"}),

		audioRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "citywalk_audio_requests_total",
			Help: "Narration requests by result",
		}, []string{"result"}),
	}
}

// TourResolved counts a tour request answered at stage.
func (m *Metrics) TourResolved(stage string) {
	m.tourResolutions.WithLabelValues(stage).Inc()
}

// GenerationAttempt counts one generator call by outcome.
func (m *Metrics) GenerationAttempt(outcome string) {
	m.generationAttempts.WithLabelValues(outcome).Inc()
}

// CacheLookup counts a lookup against store by result.
func (m *Metrics) CacheLookup(store, result string) {
	m.cacheLookups.WithLabelValues(store, result).Inc()
}

// ProfileSynced counts a profile reconcile by outcome.
func (m *Metrics) ProfileSynced(outcome string) {
	m.profileSyncs.WithLabelValues(outcome).Inc()
}

// AudioRequested counts a narration request by result.
func (m *Metrics) AudioRequested(result string) {
	m.audioRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) observeRequest(route string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(route, statusBucket(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Middleware records request count and latency labelled by the matched chi
// route pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.observeRequest(route, sw.status, time.Since(start))
	})
}
