package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics backed by a manual reader so tests can
// inspect what was recorded.
func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailedLabels)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

// counterPoints collects the data points of the named int64 counter.
func counterPoints(t *testing.T, reader *sdkmetric.ManualReader, name string) []metricdata.DataPoint[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, want Sum[int64]", name, m.Data)
			}
			return sum.DataPoints
		}
	}
	return nil
}

func pointValue(points []metricdata.DataPoint[int64], key, value string) int64 {
	var total int64
	for _, dp := range points {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestMetrics_RecordAssistantOperation(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordAssistantOperation(ctx, OperationCreateRun, StatusSuccess, 100*time.Millisecond)
	m.RecordAssistantOperation(ctx, OperationRetrieveRun, StatusSuccess, 50*time.Millisecond)
	m.RecordAssistantOperation(ctx, OperationRetrieveRun, StatusSuccess, 50*time.Millisecond)
	m.RecordAssistantOperation(ctx, OperationSubmitToolOutputs, StatusError, 10*time.Millisecond)

	points := counterPoints(t, reader, "assistant_api_operations_total")
	if got := pointValue(points, attrOperation, OperationRetrieveRun); got != 2 {
		t.Errorf("retrieve_run count = %d, want 2", got)
	}
	if got := pointValue(points, attrStatus, StatusError); got != 1 {
		t.Errorf("error count = %d, want 1", got)
	}
}

func TestMetrics_RecordRunPoll(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordRunPoll(ctx, "queued")
	m.RecordRunPoll(ctx, "in_progress")
	m.RecordRunPoll(ctx, "in_progress")
	m.RecordRunPoll(ctx, "completed")

	points := counterPoints(t, reader, "assistant_run_polls_total")
	if got := pointValue(points, attrRunStatus, "in_progress"); got != 2 {
		t.Errorf("in_progress polls = %d, want 2", got)
	}
	if got := pointValue(points, attrRunStatus, "completed"); got != 1 {
		t.Errorf("completed polls = %d, want 1", got)
	}
}

func TestMetrics_RecordRun(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordRun(ctx, RunResultCompleted, 3*time.Second)
	m.RecordRun(ctx, RunResultTimeout, 5*time.Minute)

	points := counterPoints(t, reader, "assistant_runs_total")
	if got := pointValue(points, attrResult, RunResultTimeout); got != 1 {
		t.Errorf("timeout runs = %d, want 1", got)
	}
}

func TestMetrics_RecordCalendarInsert(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordCalendarInsert(ctx, "team@example.com", StatusSuccess, 200*time.Millisecond)
	m.RecordCalendarInsert(ctx, "team@example.com", StatusError, 200*time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}

	var inserts, apiOps []metricdata.DataPoint[int64]
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			sum, ok := metric.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			switch metric.Name {
			case "calendar_event_inserts_total":
				inserts = sum.DataPoints
			case "google_api_operations_total":
				apiOps = sum.DataPoints
			}
		}
	}

	if got := pointValue(inserts, attrStatus, StatusSuccess); got != 1 {
		t.Errorf("successful inserts = %d, want 1", got)
	}
	if got := pointValue(apiOps, attrOperation, OperationInsert); got != 2 {
		t.Errorf("google insert operations = %d, want 2", got)
	}
	for _, dp := range inserts {
		if _, ok := dp.Attributes.Value(attribute.Key(attrCalendar)); ok {
			t.Error("calendar label should not be present without detailed labels")
		}
	}
}

func TestMetrics_RecordCalendarInsert_DetailedLabels(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, true)

	m.RecordCalendarInsert(ctx, "team@example.com", StatusSuccess, 200*time.Millisecond)

	points := counterPoints(t, reader, "calendar_event_inserts_total")
	if got := pointValue(points, attrCalendar, "example.com"); got != 1 {
		t.Errorf("inserts labelled example.com = %d, want 1", got)
	}
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordToolInvocation(ctx, SourceAssistant, "schedule_event", StatusSuccess, 100*time.Millisecond)
	m.RecordToolInvocation(ctx, SourceMCP, "schedule_event", StatusError, 100*time.Millisecond)
	m.RecordToolInvocation(ctx, SourceAssistant, "get_weather", StatusUnsupported, time.Millisecond)

	points := counterPoints(t, reader, "tool_invocations_total")
	if got := pointValue(points, attrSource, SourceAssistant); got != 2 {
		t.Errorf("assistant invocations = %d, want 2", got)
	}
	if got := pointValue(points, attrStatus, StatusUnsupported); got != 1 {
		t.Errorf("unsupported invocations = %d, want 1", got)
	}
}

func TestMetrics_PrometheusProvider(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordAssistantOperation(ctx, OperationCreateThread, StatusSuccess, 100*time.Millisecond)
	metrics.RecordCalendarInsert(ctx, "primary", StatusSuccess, 100*time.Millisecond)
	metrics.RecordToolInvocation(ctx, SourceAssistant, "schedule_event", StatusSuccess, time.Millisecond)
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	metrics := provider.Metrics()

	// All of these should be no-ops and not panic
	metrics.RecordAssistantOperation(ctx, OperationRetrieveRun, StatusSuccess, time.Second)
	metrics.RecordRunPoll(ctx, "queued")
	metrics.RecordRun(ctx, RunResultCompleted, time.Second)
	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationInsert, StatusSuccess, time.Second)
	metrics.RecordCalendarInsert(ctx, "primary", StatusSuccess, time.Second)
	metrics.RecordToolInvocation(ctx, SourceMCP, "schedule_event", StatusSuccess, time.Second)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()

	// A nil recorder is valid and records nothing
	metrics.RecordRunPoll(ctx, "queued")
	metrics.RecordCalendarInsert(ctx, "primary", StatusError, time.Second)
	metrics.RecordToolInvocation(ctx, SourceAssistant, "schedule_event", StatusSuccess, time.Second)
}
