package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client wraps a Redis client with OpenTelemetry tracing
type Client struct {
	cmdable redis.Cmdable
}

// NewClient creates a new traced Redis client for single Redis instance
func NewClient(client *redis.Client) *Client {
	return &Client{cmdable: client}
}

// NewClusterClient creates a new traced Redis client for Redis cluster
func NewClusterClient(client *redis.ClusterClient) *Client {
	return &Client{cmdable: client}
}

// traced runs a command inside a span named after the operation and records
// its duration and error. redis.Nil is not treated as an error.
func traced[T redis.Cmder](ctx context.Context, operation string, attrs []attribute.KeyValue, run func(context.Context) T) T {
	start := time.Now()
	attrs = append(attrs,
		attribute.String("redis.operation", operation),
		attribute.String("redis.client", "app-matriculas"),
	)
	ctx, span := otel.Tracer("redis").Start(ctx, "redis."+operation, trace.WithAttributes(attrs...))
	defer func() {
		duration := time.Since(start)
		span.SetAttributes(
			attribute.Int64("redis.duration_ms", duration.Milliseconds()),
			attribute.String("redis.duration", duration.String()),
		)
		span.End()
	}()

	cmd := run(ctx)
	if err := cmd.Err(); err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("redis.error", err.Error()))
	} else {
		span.SetStatus(codes.Ok, "success")
	}
	return cmd
}

// Get wraps Redis Get with tracing
func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	return traced(ctx, "get", []attribute.KeyValue{attribute.String("redis.key", key)},
		func(ctx context.Context) *redis.StringCmd { return c.cmdable.Get(ctx, key) })
}

// Set wraps Redis Set with tracing
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return traced(ctx, "set", []attribute.KeyValue{
		attribute.String("redis.key", key),
		attribute.String("redis.expiration", expiration.String()),
	}, func(ctx context.Context) *redis.StatusCmd { return c.cmdable.Set(ctx, key, value, expiration) })
}

// Del wraps Redis Del with tracing
func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return traced(ctx, "del", []attribute.KeyValue{
		attribute.StringSlice("redis.keys", keys),
		attribute.Int("redis.key_count", len(keys)),
	}, func(ctx context.Context) *redis.IntCmd { return c.cmdable.Del(ctx, keys...) })
}

// Ping wraps Redis Ping with tracing
func (c *Client) Ping(ctx context.Context) *redis.StatusCmd {
	return traced(ctx, "ping", nil,
		func(ctx context.Context) *redis.StatusCmd { return c.cmdable.Ping(ctx) })
}
