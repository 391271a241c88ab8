// Package observability bundles logging, metrics and tracing.
package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/pkg/limiter"
	"github.com/snow-ghost/validator/pkg/logging"
	"github.com/snow-ghost/validator/pkg/metrics"
	"github.com/snow-ghost/validator/pkg/tracing"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/trace"
)

// Manager manages all observability components
type Manager struct {
	metrics  *metrics.PrometheusMetrics
	registry *prometheus.Registry
	tracer   *tracing.Tracer
	logger   *logging.Logger
}

// Config holds observability configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	JaegerEndpoint string
	LogLevel       string
	LogFormat      string

	// Logger replaces the logger built from LogLevel and LogFormat.
	Logger *logging.Logger
}

// NewManager creates a new observability manager
func NewManager(config Config) (*Manager, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tracer, err := tracing.NewTracer(tracing.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: config.ServiceVersion,
		JaegerEndpoint: config.JaegerEndpoint,
		Environment:    config.Environment,
	})
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger, err = logging.NewLogger(logging.Config{
			Level:     config.LogLevel,
			Format:    config.LogFormat,
			Output:    "stdout",
			AddCaller: true,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Manager{
		metrics:  metrics.NewPrometheusMetrics(registry),
		registry: registry,
		tracer:   tracer,
		logger:   logger,
	}, nil
}

// NewNop returns a manager with a private registry, a noop tracer and a
// discarding logger.
func NewNop() *Manager {
	m, err := NewManager(Config{ServiceName: "validator", Logger: logging.NewNop()})
	if err != nil {
		// only reachable with a Jaeger endpoint
		panic(err)
	}
	return m
}

// GetMetrics returns the metrics instance
func (m *Manager) GetMetrics() *metrics.PrometheusMetrics {
	return m.metrics
}

// GetTracer returns the tracer instance
func (m *Manager) GetTracer() *tracing.Tracer {
	return m.tracer
}

// GetLogger returns the logger instance
func (m *Manager) GetLogger() *logging.Logger {
	return m.logger
}

// Registry returns the registry metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// MetricsHandler serves the registry in the Prometheus text format.
func (m *Manager) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartValidation opens the validation span.
func (m *Manager) StartValidation(ctx context.Context, practiceID string) (context.Context, trace.Span) {
	return m.tracer.StartValidationSpan(ctx, practiceID)
}

// FinishValidation records the outcome of a validation and ends span.
func (m *Manager) FinishValidation(ctx context.Context, span trace.Span, report core.ValidationReport, duration time.Duration, err error) {
	defer span.End()
	tracing.RecordSpanDuration(span, duration)
	if err != nil {
		tracing.RecordSpanError(span, err)
		m.logger.Error("Validation failed", "practice_id", report.PracticeID, "error", err)
		return
	}
	tracing.RecordSpanDecision(span, string(report.Decision), report.FinalScore)
	tracing.RecordSpanSuccess(span)
	m.metrics.RecordValidation(string(report.Decision), duration)
	m.logger.LogValidation(ctx, report.PracticeID, string(report.Decision), report.FinalScore, duration)
}

// StartAnalyzer opens the span of one analyzer run.
func (m *Manager) StartAnalyzer(ctx context.Context, criterion core.CriterionID) (context.Context, trace.Span) {
	return m.tracer.StartAnalyzerSpan(ctx, string(criterion))
}

// FinishAnalyzer records latency and, when failure is non-nil, the neutral
// fallback that replaced the analyzer result.
func (m *Manager) FinishAnalyzer(ctx context.Context, span trace.Span, criterion core.CriterionID, duration time.Duration, failure error) {
	defer span.End()
	m.metrics.RecordAnalyzer(string(criterion), duration)
	if failure == nil {
		tracing.RecordSpanSuccess(span)
		return
	}
	tracing.RecordSpanError(span, failure)
	reason := FallbackReason(failure)
	m.metrics.RecordFallback(string(criterion), reason)
	m.logger.LogAnalyzerFallback(ctx, string(criterion), failure.Error())
}

// FallbackReason maps an analyzer failure to a low cardinality label.
func FallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "panic"
	}
}

// ObserveLLMRequest implements llm.Recorder.
func (m *Manager) ObserveLLMRequest(backend string, duration time.Duration, err error) {
	m.metrics.ObserveLLMRequest(backend, duration, err)
}

// ObserveLLMCache implements llm.Recorder.
func (m *Manager) ObserveLLMCache(hit bool) {
	m.metrics.ObserveLLMCache(hit)
}

// RecordEvent counts a settled broker message.
func (m *Manager) RecordEvent(outcome string) {
	m.metrics.RecordEvent(outcome)
}

// Instrument hooks retry and circuit breaker events of pm into metrics
// and logs. It must run before the first protected call.
func (m *Manager) Instrument(pm *limiter.ProtectionManager, policies ...limiter.Policy) {
	pm.Breakers().OnStateChange(func(service string, from, to gobreaker.State) {
		m.metrics.RecordCircuitTransition(service, to.String())
		m.logger.LogCircuitBreaker(context.Background(), service, from.String(), to.String())
	})
	for _, p := range policies {
		if p.Retry == nil {
			p.Retry = limiter.DefaultRetryConfig()
		}
		service := p.Service
		p.Retry.OnRetry = func(attempt int, err error) {
			m.metrics.RecordRetry(service)
			m.logger.LogRetry(context.Background(), service, attempt, err)
		}
		pm.Register(p)
	}
}

// Shutdown flushes the tracer and the logger.
func (m *Manager) Shutdown(ctx context.Context) error {
	err := m.tracer.Shutdown(ctx)
	_ = m.logger.Sync()
	return err
}
