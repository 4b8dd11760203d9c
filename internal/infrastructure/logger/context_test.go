package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))

	fallback := zap.NewExample()
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))
	assert.Same(t, l, FromContextOr(WithContext(context.Background(), l), fallback))

	wrong := context.WithValue(context.Background(), loggerKey, "not a logger")
	assert.NotNil(t, FromContext(wrong))
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := context.Background()
	l := zap.New(core)

	ctx, l = WithRequestID(ctx, l, "req-1")
	ctx, l = WithShop(ctx, l, "jewelery.myshopify.com")
	ctx, _ = WithRunID(ctx, l, "run-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "jewelery.myshopify.com", GetShop(ctx))
	assert.Equal(t, "run-9", GetRunID(ctx))

	L(ctx).Info("published")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "jewelery.myshopify.com", fields["shop"])
	assert.Equal(t, "run-9", fields["run_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestContextFields_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetShop(ctx))
	assert.Empty(t, GetRunID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	assert.Same(t, base, WithTraceContext(context.Background(), base))

	ctx, span := tp.Tracer("test").Start(context.Background(), "import")
	defer span.End()

	WithTraceContext(ctx, base).Info("traced")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}
