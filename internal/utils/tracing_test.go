package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecordingTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return exporter
}

func spanAttributes(span tracetest.SpanStub) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value, len(span.Attributes))
	for _, kv := range span.Attributes {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestTraceStep(t *testing.T) {
	exporter := withRecordingTracer(t)

	ctx, span := TraceStep(context.Background(), "check_cpf", attribute.String("tenant_id", "escola-1"))
	require.NotNil(t, ctx)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "endpoint.step.check_cpf", spans[0].Name)

	attrs := spanAttributes(spans[0])
	assert.Equal(t, "check_cpf", attrs["step.name"].AsString())
	assert.Equal(t, "escola-1", attrs["tenant_id"].AsString())
}

func TestTraceHelpers(t *testing.T) {
	exporter := withRecordingTracer(t)
	ctx := context.Background()

	_, span := TraceInputValidation(ctx, "cpf", "cpf")
	span.End()
	_, span = TraceBusinessLogic(ctx, "create_person")
	span.End()
	_, span = TraceCacheGet(ctx, "person:abc")
	span.End()
	_, span = TraceCacheInvalidation(ctx, "person:abc")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)
	assert.Equal(t, "endpoint.step.validate_input", spans[0].Name)
	assert.Equal(t, "cpf", spanAttributes(spans[0])["validation.field"].AsString())
	assert.Equal(t, "create_person", spanAttributes(spans[1])["logic.type"].AsString())
	assert.Equal(t, "get", spanAttributes(spans[2])["cache.operation"].AsString())
	assert.Equal(t, "delete", spanAttributes(spans[3])["cache.operation"].AsString())
}

func TestRecordErrorInSpan(t *testing.T) {
	exporter := withRecordingTracer(t)

	_, span := TraceBusinessLogic(context.Background(), "update_person")
	start := time.Now()
	RecordErrorInSpan(span, errors.New("boom"), attribute.String("person_id", "abc"))
	AddTimingToSpan(span, start)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "boom", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)

	attrs := spanAttributes(spans[0])
	assert.Equal(t, "abc", attrs["person_id"].AsString())
	_, ok := attrs["duration_ms"]
	assert.True(t, ok)
}
