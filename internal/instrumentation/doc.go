// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for calassist.
//
// # Metrics
//
// Assistant provider:
//   - assistant_api_operations_total / assistant_api_operation_duration_seconds:
//     calls to the assistant API by operation and status
//   - assistant_run_polls_total: run status checks by observed run status
//   - assistant_runs_total / assistant_run_duration_seconds: runs by result
//     (completed, failed, timeout, error)
//
// Calendar:
//   - calendar_event_inserts_total: inserted events by status (and calendar
//     domain when METRICS_DETAILED_LABELS=true)
//   - google_api_operations_total / google_api_operation_duration_seconds
//
// Tools:
//   - tool_invocations_total / tool_duration_seconds: dispatched tool calls by
//     source (assistant, mcp), tool and status
//
// # Tracing
//
// Spans are created for the whole run (assistant.run), each provider call
// (<service>.<operation>, client kind) and each dispatched tool call
// (tool.<name>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout, none (default: prometheus,
//     downgraded to none when no --metrics-addr is given)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: calassist)
//   - AUDIT_LOGGING_ENABLED / AUDIT_LOGGING_INCLUDE_PII
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	metrics := provider.Metrics()
//	metrics.RecordCalendarInsert(ctx, "primary", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
