package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps OpenTelemetry tracer
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// Config holds tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	JaegerEndpoint string
	Environment    string
}

// NewTracer creates a tracer exporting to Jaeger. Without an endpoint it
// uses the global provider, which is a noop unless someone installed one.
func NewTracer(config Config) (*Tracer, error) {
	if config.JaegerEndpoint == "" {
		return &Tracer{tracer: otel.Tracer(config.ServiceName)}, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(config.JaegerEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return NewTracerFromProvider(tp, config.ServiceName), nil
}

// NewTracerFromProvider wraps an existing provider.
func NewTracerFromProvider(tp *sdktrace.TracerProvider, name string) *Tracer {
	return &Tracer{tracer: tp.Tracer(name), provider: tp}
}

// StartSpan starts a new span
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// StartValidationSpan starts the span covering one practice validation
func (t *Tracer) StartValidationSpan(ctx context.Context, practiceID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "validation.run",
		trace.WithAttributes(attribute.String("practice.id", practiceID)))
}

// StartAnalyzerSpan starts a span for one criterion analyzer
func (t *Tracer) StartAnalyzerSpan(ctx context.Context, criterion string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "analyzer.run",
		trace.WithAttributes(attribute.String("analyzer.criterion", criterion)))
}

// RecordSpanError records an error in a span
func RecordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordSpanSuccess records success in a span
func RecordSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// RecordSpanDuration records duration in a span
func RecordSpanDuration(span trace.Span, duration time.Duration) {
	span.SetAttributes(attribute.Float64("duration_ms", float64(duration.Nanoseconds())/1e6))
}

// RecordSpanDecision records the outcome of a validation
func RecordSpanDecision(span trace.Span, decision string, finalScore *float64) {
	span.SetAttributes(attribute.String("validation.decision", decision))
	if finalScore != nil {
		span.SetAttributes(attribute.Float64("validation.final_score", *finalScore))
	}
}

// Shutdown flushes and stops the provider owned by this tracer, if any.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// GetTraceID extracts trace ID from context
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
