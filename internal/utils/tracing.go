package utils

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "app-matriculas"

// TraceStep starts a span for one step of a request
func TraceStep(ctx context.Context, stepName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("step.name", stepName),
		attribute.String("step.type", "endpoint_operation"),
	)
	return otel.Tracer(tracerName).Start(ctx, "endpoint.step."+stepName, trace.WithAttributes(attrs...))
}

// TraceInputValidation traces input validation operations
func TraceInputValidation(ctx context.Context, validationType, field string) (context.Context, trace.Span) {
	return TraceStep(ctx, "validate_input",
		attribute.String("validation.type", validationType),
		attribute.String("validation.field", field))
}

// TraceBusinessLogic traces business logic operations
func TraceBusinessLogic(ctx context.Context, logicType string) (context.Context, trace.Span) {
	return TraceStep(ctx, "business_logic", attribute.String("logic.type", logicType))
}

// TraceCacheGet traces cache get operations
func TraceCacheGet(ctx context.Context, cacheKey string) (context.Context, trace.Span) {
	return TraceStep(ctx, "cache_get",
		attribute.String("cache.key", cacheKey),
		attribute.String("cache.operation", "get"))
}

// TraceCacheInvalidation traces cache invalidation operations
func TraceCacheInvalidation(ctx context.Context, cacheKey string) (context.Context, trace.Span) {
	return TraceStep(ctx, "cache_invalidation",
		attribute.String("cache.key", cacheKey),
		attribute.String("cache.operation", "delete"))
}

// AddTimingToSpan adds timing information to an existing span
func AddTimingToSpan(span trace.Span, startTime time.Time) {
	duration := time.Since(startTime)
	span.SetAttributes(
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("duration", duration.String()),
	)
}

// RecordErrorInSpan records err on the span and marks it failed
func RecordErrorInSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attrs...)
}
