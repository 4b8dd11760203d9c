package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := setupRecorder(t)

	ctx, span := StartSpan(context.Background(), "import.publish_item",
		WithAttribute("catalog.handle", "ring"),
		WithAttribute("catalog.variants", 2),
		WithSpanKind(trace.SpanKindClient))

	assert.NotEmpty(t, GetTraceID(ctx))
	assert.NotEmpty(t, GetSpanID(ctx))

	AddEvent(span, "ledger_hit", "shop", "demo", 42, "ignored")
	RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "import.publish_item", got.Name())
	assert.Equal(t, trace.SpanKindClient, got.SpanKind())
	assert.Contains(t, got.Attributes(), attribute.String("catalog.handle", "ring"))
	assert.Contains(t, got.Attributes(), attribute.Int("catalog.variants", 2))
	assert.Equal(t, codes.Error, got.Status().Code)

	var names []string
	for _, e := range got.Events() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "ledger_hit")
}

func TestSetOK(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartSpan(context.Background(), "ok")
	SetOK(span)
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, codes.Ok, recorder.Ended()[0].Status().Code)
}

func TestIDsWithoutSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))

	RecordError(nil, errors.New("ignored"))
	SetOK(nil)
	AddEvent(nil, "ignored")
}

func TestToAttribute(t *testing.T) {
	tests := []struct {
		value any
		want  attribute.KeyValue
	}{
		{"x", attribute.String("k", "x")},
		{7, attribute.Int("k", 7)},
		{int64(7), attribute.Int64("k", 7)},
		{1.5, attribute.Float64("k", 1.5)},
		{true, attribute.Bool("k", true)},
		{[]string{"a"}, attribute.StringSlice("k", []string{"a"})},
		{struct{ A int }{1}, attribute.String("k", "{1}")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toAttribute("k", tt.value))
	}
}
