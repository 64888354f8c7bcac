package instrumentation

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

// useSpanRecorder installs a recording tracer provider for the duration of the test.
func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}
	return m
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("schedule_event").
		WithToolCall("call_1").
		WithRun("thread_1", "run_1").
		WithCalendar("primary").
		WithEvent("evt_1").
		Build()

	assert.Len(t, attrs, 6)
	m := attrMap(attrs)
	assert.Equal(t, "schedule_event", m[SpanAttrTool])
	assert.Equal(t, "call_1", m[SpanAttrToolCallID])
	assert.Equal(t, "thread_1", m[SpanAttrThread])
	assert.Equal(t, "run_1", m[SpanAttrRun])
	assert.Equal(t, "primary", m[SpanAttrCalendar])
	assert.Equal(t, "evt_1", m[SpanAttrEventID])
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("schedule_event").
		WithToolCall("").
		WithRun("", "").
		WithCalendar("").
		WithEvent("").
		Build()

	assert.Len(t, attrs, 1, "only the tool name should be present")
}

func TestStartToolSpan(t *testing.T) {
	recorder := useSpanRecorder(t)

	ctx, span := StartToolSpan(context.Background(), "schedule_event", attribute.String(SpanAttrToolCallID, "call_1"))
	assert.NotEmpty(t, GetTraceID(ctx))
	assert.NotEmpty(t, GetSpanID(ctx))
	SetSpanSuccess(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "tool.schedule_event", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	m := attrMap(spans[0].Attributes())
	assert.Equal(t, "schedule_event", m[SpanAttrTool])
	assert.Equal(t, "call_1", m[SpanAttrToolCallID])
}

func TestStartProviderSpan(t *testing.T) {
	recorder := useSpanRecorder(t)

	_, span := StartProviderSpan(context.Background(), ServiceCalendar, OperationInsert)
	SetSpanError(span, errors.New("quota exceeded"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "calendar.insert", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "quota exceeded", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1, "error should be recorded as a span event")
}

func TestStartSpanAndAddEvent(t *testing.T) {
	recorder := useSpanRecorder(t)

	_, span := StartSpan(context.Background(), "assistant.run", attribute.String(SpanAttrThread, "thread_1"))
	AddSpanEvent(span, "status_changed", attribute.String(SpanAttrRunStatus, "requires_action"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "status_changed", spans[0].Events()[0].Name)
}

func TestSetSpanError_NilIsNoop(t *testing.T) {
	recorder := useSpanRecorder(t)

	_, span := StartSpan(context.Background(), "noop")
	SetSpanError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTraceIDs_NoSpan(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}
