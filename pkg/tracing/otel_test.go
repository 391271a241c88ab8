package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracer_NoEndpoint(t *testing.T) {
	tr, err := NewTracer(Config{ServiceName: "validator"})
	require.NoError(t, err)

	ctx, span := tr.StartValidationSpan(context.Background(), "p1")
	span.End()
	assert.NotNil(t, ctx)
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := NewTracerFromProvider(tp, "validator")

	ctx, root := tr.StartValidationSpan(context.Background(), "p1")
	assert.NotEmpty(t, GetTraceID(ctx))

	_, child := tr.StartAnalyzerSpan(ctx, "Q")
	RecordSpanError(child, errors.New("deadline"))
	child.End()

	score := 7.5
	RecordSpanDecision(root, "approve", &score)
	RecordSpanSuccess(root)
	root.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "analyzer.run", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())

	assert.Equal(t, "validation.run", spans[1].Name())
	assert.Contains(t, spans[1].Attributes(), attribute.String("validation.decision", "approve"))
	assert.Contains(t, spans[1].Attributes(), attribute.String("practice.id", "p1"))

	require.NoError(t, tr.Shutdown(context.Background()))
}
