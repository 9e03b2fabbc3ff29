package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prefeitura-rio/app-matriculas/internal/config"
	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceName = "app-matriculas"

// ServiceVersion is stamped at build time with -ldflags
var ServiceVersion = "dev"

var tracerProvider *sdktrace.TracerProvider

// TracerSettings labels and samples the spans of one process
type TracerSettings struct {
	Component   string
	Environment string
	SampleRatio float64
}

// InitTracer exports spans of component over OTLP gRPC when tracing is
// enabled. Spans whose parent was sampled upstream are always kept.
func InitTracer(ctx context.Context, component string) error {
	if !config.AppConfig.TracingEnabled {
		logging.Logger.Info("tracing is disabled", zap.String("component", component))
		return nil
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(config.AppConfig.TracingEndpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	))
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	settings := TracerSettings{
		Component:   component,
		Environment: config.AppConfig.Environment,
		SampleRatio: config.AppConfig.TracingSampleRatio,
	}
	provider, err := newTracerProvider(ctx, sdktrace.WithBatcher(exporter,
		sdktrace.WithMaxExportBatchSize(512),
		sdktrace.WithBatchTimeout(10*time.Second),
		sdktrace.WithMaxQueueSize(2048),
	), settings)
	if err != nil {
		return err
	}

	tracerProvider = provider
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logging.Logger.Info("tracer initialized",
		zap.String("component", component),
		zap.String("endpoint", config.AppConfig.TracingEndpoint),
		zap.Float64("sample_ratio", settings.SampleRatio))
	return nil
}

func newTracerProvider(ctx context.Context, processor sdktrace.TracerProviderOption, settings TracerSettings) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(ServiceVersion),
			attribute.String("deployment.environment", settings.Environment),
			attribute.String("app.component", settings.Component),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracing resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.SampleRatio))),
	), nil
}

// ShutdownTracer flushes buffered spans and stops the exporter
func ShutdownTracer(ctx context.Context) {
	if tracerProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := tracerProvider.Shutdown(ctx); err != nil {
		logging.Logger.Error("failed to shutdown tracer provider", zap.Error(err))
	}
	tracerProvider = nil
}
