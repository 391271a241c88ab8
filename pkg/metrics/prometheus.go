package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	// Validation metrics
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration prometheus.Histogram

	// Analyzer metrics
	AnalyzerLatency        *prometheus.HistogramVec
	AnalyzerFallbacksTotal *prometheus.CounterVec

	// Language model metrics
	LLMRequestsTotal *prometheus.CounterVec
	LLMLatency       *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Retry metrics
	RetriesTotal *prometheus.CounterVec

	// Circuit breaker metrics
	CircuitTransitionsTotal *prometheus.CounterVec

	// Event metrics
	EventsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers all metrics on reg. A nil reg uses the
// default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		ValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validator_validations_total",
				Help: "Total number of validations by decision",
			},
			[]string{"decision"},
		),

		ValidationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "validator_validation_duration_seconds",
				Help:    "Time to validate one practice",
				Buckets: prometheus.DefBuckets,
			},
		),

		AnalyzerLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "validator_analyzer_latency_seconds",
				Help:    "Analyzer latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"criterion"},
		),

		AnalyzerFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validator_analyzer_fallbacks_total",
				Help: "Analyzer results replaced by the neutral default",
			},
			[]string{"criterion", "reason"},
		),

		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validator_llm_requests_total",
				Help: "Total number of language model requests",
			},
			[]string{"backend", "status"},
		),

		LLMLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "validator_llm_latency_seconds",
				Help:    "Language model request latency in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 180},
			},
			[]string{"backend"},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "validator_llm_cache_hits_total",
				Help: "Total number of cache hits",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "validator_llm_cache_misses_total",
				Help: "Total number of cache misses",
			},
		),

		RetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validator_retries_total",
				Help: "Total number of retries",
			},
			[]string{"service"},
		),

		CircuitTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validator_circuit_transitions_total",
				Help: "Circuit breaker state transitions by target state",
			},
			[]string{"service", "state"},
		),

		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validator_events_total",
				Help: "Consumed events by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordValidation records a finished validation
func (m *PrometheusMetrics) RecordValidation(decision string, duration time.Duration) {
	m.ValidationsTotal.WithLabelValues(decision).Inc()
	m.ValidationDuration.Observe(duration.Seconds())
}

// RecordAnalyzer records one analyzer run
func (m *PrometheusMetrics) RecordAnalyzer(criterion string, duration time.Duration) {
	m.AnalyzerLatency.WithLabelValues(criterion).Observe(duration.Seconds())
}

// RecordFallback records an analyzer replaced by the neutral default
func (m *PrometheusMetrics) RecordFallback(criterion, reason string) {
	m.AnalyzerFallbacksTotal.WithLabelValues(criterion, reason).Inc()
}

// ObserveLLMRequest records a language model request
func (m *PrometheusMetrics) ObserveLLMRequest(backend string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.LLMRequestsTotal.WithLabelValues(backend, status).Inc()
	m.LLMLatency.WithLabelValues(backend).Observe(duration.Seconds())
}

// ObserveLLMCache records a cache lookup
func (m *PrometheusMetrics) ObserveLLMCache(hit bool) {
	if hit {
		m.CacheHitsTotal.Inc()
		return
	}
	m.CacheMissesTotal.Inc()
}

// RecordRetry records a retry
func (m *PrometheusMetrics) RecordRetry(service string) {
	m.RetriesTotal.WithLabelValues(service).Inc()
}

// RecordCircuitTransition records a circuit breaker moving to state
func (m *PrometheusMetrics) RecordCircuitTransition(service, state string) {
	m.CircuitTransitionsTotal.WithLabelValues(service, state).Inc()
}

// RecordEvent records how a consumed event was settled
func (m *PrometheusMetrics) RecordEvent(outcome string) {
	m.EventsTotal.WithLabelValues(outcome).Inc()
}
