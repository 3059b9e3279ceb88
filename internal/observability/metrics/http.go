package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queriesTotal      *prometheus.CounterVec
	queryDuration     *prometheus.HistogramVec
	evidenceDocuments *prometheus.HistogramVec
	evidenceTokens    *prometheus.HistogramVec
	budgetTrimsTotal  *prometheus.CounterVec
	citationsPerQuery *prometheus.HistogramVec
	noTopicMatchTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dqa",
			Subsystem: "query",
			Name:      "total",
			Help:      "Total answered queries by topic and status.",
		},
		[]string{"service", "topic", "status"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dqa",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "End-to-end query duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	evidenceDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dqa",
			Subsystem: "query",
			Name:      "evidence_documents",
			Help:      "Distribution of evidence documents per answered query.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
		},
		[]string{"service"},
	)
	evidenceTokens := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dqa",
			Subsystem: "query",
			Name:      "evidence_tokens",
			Help:      "Distribution of selected evidence tokens per answered query.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 3000, 4000, 6000},
		},
		[]string{"service"},
	)
	budgetTrimsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dqa",
			Subsystem: "query",
			Name:      "budget_trims_total",
			Help:      "Total queries whose evidence was trimmed to fit the budget.",
		},
		[]string{"service"},
	)
	citationsPerQuery := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dqa",
			Subsystem: "query",
			Name:      "citations",
			Help:      "Distribution of resolved citations per answered query.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8},
		},
		[]string{"service"},
	)
	noTopicMatchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dqa",
			Subsystem: "query",
			Name:      "no_topic_match_total",
			Help:      "Total queries the router matched to no topic.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		queriesTotal,
		queryDuration,
		evidenceDocuments,
		evidenceTokens,
		budgetTrimsTotal,
		citationsPerQuery,
		noTopicMatchTotal,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		queriesTotal:      queriesTotal,
		queryDuration:     queryDuration,
		evidenceDocuments: evidenceDocuments,
		evidenceTokens:    evidenceTokens,
		budgetTrimsTotal:  budgetTrimsTotal,
		citationsPerQuery: citationsPerQuery,
		noTopicMatchTotal: noTopicMatchTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

// QueryObservation captures everything the metrics layer records about one
// answered query.
type QueryObservation struct {
	Topic          string
	Documents      int
	EvidenceTokens int
	BudgetExceeded bool
	Citations      int
	Duration       time.Duration
}

func (m *HTTPServerMetrics) RecordQuery(service string, obs QueryObservation) {
	topic := obs.Topic
	if topic == "" {
		topic = "unknown"
	}
	m.queriesTotal.WithLabelValues(service, topic, "success").Inc()
	m.queryDuration.WithLabelValues(service).Observe(obs.Duration.Seconds())
	m.evidenceDocuments.WithLabelValues(service).Observe(float64(obs.Documents))
	m.evidenceTokens.WithLabelValues(service).Observe(float64(obs.EvidenceTokens))
	m.citationsPerQuery.WithLabelValues(service).Observe(float64(obs.Citations))
	if obs.BudgetExceeded {
		m.budgetTrimsTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordQueryFailure(service, topic string) {
	if topic == "" {
		topic = "unknown"
	}
	m.queriesTotal.WithLabelValues(service, topic, "error").Inc()
}

func (m *HTTPServerMetrics) RecordNoTopicMatch(service string) {
	m.noTopicMatchTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
