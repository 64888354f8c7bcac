package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrSource    = "source"
	attrRunStatus = "run_status"
	attrCalendar  = "calendar"
)

// Metrics provides methods for recording observability metrics.
// A nil *Metrics or a zero Metrics is a valid no-op recorder.
type Metrics struct {
	// Assistant provider metrics
	assistantOperationsTotal   metric.Int64Counter
	assistantOperationDuration metric.Float64Histogram
	runPollsTotal              metric.Int64Counter
	runsTotal                  metric.Int64Counter
	runDuration                metric.Float64Histogram

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram
	calendarInsertsTotal       metric.Int64Counter

	// Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// Assistant Metrics
	m.assistantOperationsTotal, err = meter.Int64Counter(
		"assistant_api_operations_total",
		metric.WithDescription("Total number of assistant API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant_api_operations_total counter: %w", err)
	}

	m.assistantOperationDuration, err = meter.Float64Histogram(
		"assistant_api_operation_duration_seconds",
		metric.WithDescription("Assistant API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant_api_operation_duration_seconds histogram: %w", err)
	}

	m.runPollsTotal, err = meter.Int64Counter(
		"assistant_run_polls_total",
		metric.WithDescription("Total number of run status polls by observed status"),
		metric.WithUnit("{poll}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant_run_polls_total counter: %w", err)
	}

	m.runsTotal, err = meter.Int64Counter(
		"assistant_runs_total",
		metric.WithDescription("Total number of assistant runs by result"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant_runs_total counter: %w", err)
	}

	m.runDuration, err = meter.Float64Histogram(
		"assistant_run_duration_seconds",
		metric.WithDescription("End-to-end assistant run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant_run_duration_seconds histogram: %w", err)
	}

	// Google API Metrics
	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	m.calendarInsertsTotal, err = meter.Int64Counter(
		"calendar_event_inserts_total",
		metric.WithDescription("Total number of calendar event inserts by status"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_event_inserts_total counter: %w", err)
	}

	// Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"tool_invocations_total",
		metric.WithDescription("Total number of tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"tool_duration_seconds",
		metric.WithDescription("Tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordAssistantOperation records a call against the assistant provider.
//
// Parameters:
//   - operation: one of the Operation* constants (create_run, retrieve_run, ...)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the call
func (m *Metrics) RecordAssistantOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil || m.assistantOperationsTotal == nil || m.assistantOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.assistantOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.assistantOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRunPoll records one status check of a run and the status it reported.
func (m *Metrics) RecordRunPoll(ctx context.Context, runStatus string) {
	if m == nil || m.runPollsTotal == nil {
		return // Instrumentation not initialized
	}

	m.runPollsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrRunStatus, runStatus)))
}

// RecordRun records the outcome of a whole run.
// Result should be one of the RunResult* constants.
func (m *Metrics) RecordRun(ctx context.Context, result string, duration time.Duration) {
	if m == nil || m.runsTotal == nil || m.runDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIOperation records a Google API operation with service, operation,
// status, and duration.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCalendarInsert records one event insert. The calendar label is only
// attached when detailed labels are enabled, and is reduced with CalendarLabel.
func (m *Metrics) RecordCalendarInsert(ctx context.Context, calendarID, status string, duration time.Duration) {
	if m == nil || m.calendarInsertsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	if m.detailedLabels && calendarID != "" {
		attrs = append(attrs, attribute.String(attrCalendar, CalendarLabel(calendarID)))
	}

	m.calendarInsertsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationInsert, status, duration)
}

// RecordToolInvocation records a tool invocation with its source, tool name, status, and duration.
//
// Parameters:
//   - source: where the call came from (SourceAssistant or SourceMCP)
//   - toolName: Name of the tool (e.g., "schedule_event")
//   - status: Result status ("success", "error" or "unsupported")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, source, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrSource, source),
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
