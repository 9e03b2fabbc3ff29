package observability

import (
	"context"
	"testing"

	"github.com/prefeitura-rio/app-matriculas/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withTracingConfig(t *testing.T, cfg config.Config) {
	t.Helper()
	original := config.AppConfig
	config.AppConfig = &cfg
	t.Cleanup(func() {
		ShutdownTracer(context.Background())
		config.AppConfig = original
	})
}

func resourceValue(span tracetest.SpanStub, key attribute.Key) string {
	for _, kv := range span.Resource.Attributes() {
		if kv.Key == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestInitTracer_Disabled(t *testing.T) {
	withTracingConfig(t, config.Config{TracingEnabled: false})

	require.NoError(t, InitTracer(context.Background(), "api"))
	assert.Nil(t, tracerProvider)
}

func TestInitTracer_Enabled(t *testing.T) {
	// The gRPC exporter connects lazily, so an unreachable endpoint still yields a provider
	withTracingConfig(t, config.Config{
		TracingEnabled:     true,
		TracingEndpoint:    "localhost:4317",
		TracingSampleRatio: 1,
		Environment:        "test",
	})

	require.NoError(t, InitTracer(context.Background(), "api"))
	assert.NotNil(t, tracerProvider)
}

func TestNewTracerProvider_LabelsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider, err := newTracerProvider(context.Background(), sdktrace.WithSyncer(exporter), TracerSettings{
		Component:   "normalize",
		Environment: "staging",
		SampleRatio: 1,
	})
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	_, span := provider.Tracer("test").Start(context.Background(), "cpf_normalization")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "app-matriculas", resourceValue(spans[0], "service.name"))
	assert.Equal(t, ServiceVersion, resourceValue(spans[0], "service.version"))
	assert.Equal(t, "staging", resourceValue(spans[0], "deployment.environment"))
	assert.Equal(t, "normalize", resourceValue(spans[0], "app.component"))
}

func TestNewTracerProvider_ZeroRatioDropsRootSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider, err := newTracerProvider(context.Background(), sdktrace.WithSyncer(exporter), TracerSettings{SampleRatio: 0})
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	_, span := provider.Tracer("test").Start(context.Background(), "create_person")
	span.End()

	assert.Empty(t, exporter.GetSpans())
}

func TestShutdownTracer_NilProvider(t *testing.T) {
	tracerProvider = nil

	// Should not panic
	ShutdownTracer(context.Background())
}
