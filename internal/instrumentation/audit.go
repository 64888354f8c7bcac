package instrumentation

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures everything about one tool call for audit logging,
// whether it came from an assistant run or from an MCP client.
//
// # Privacy Considerations
//
// Arguments carry event summaries and CalendarID may be a personal address.
// LogAttrs only emits argument keys and the calendar domain; LogAuditAttrs
// emits everything and belongs in a restricted log stream.
type ToolInvocation struct {
	// Tool name
	Tool string

	// Source is where the call came from (SourceAssistant or SourceMCP)
	Source string

	// Correlation with the assistant run
	ToolCallID string
	ThreadID   string
	RunID      string

	// Target calendar and call arguments
	CalendarID string
	Arguments  map[string]any

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// CalendarDomain returns the calendar label used for lower-cardinality logging.
func (ti *ToolInvocation) CalendarDomain() string {
	return CalendarLabel(ti.CalendarID)
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// ArgumentKeys returns the sorted argument names.
func (ti *ToolInvocation) ArgumentKeys() []string {
	keys := make([]string, 0, len(ti.Arguments))
	for k := range ti.Arguments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LogAttrs returns slog attributes for operational logging.
// Argument values and the full calendar ID are left out.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Source != "" {
		attrs = append(attrs, slog.String("source", ti.Source))
	}
	if ti.ToolCallID != "" {
		attrs = append(attrs, slog.String("tool_call_id", ti.ToolCallID))
	}
	if ti.RunID != "" {
		attrs = append(attrs, slog.String("run_id", ti.RunID))
	}
	if ti.CalendarID != "" {
		attrs = append(attrs, slog.String("calendar_domain", ti.CalendarDomain()))
	}
	if len(ti.Arguments) > 0 {
		attrs = append(attrs, slog.Any("argument_keys", ti.ArgumentKeys()))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// LogAuditAttrs returns slog attributes for full audit logging,
// including argument values and the full calendar ID.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Source != "" {
		attrs = append(attrs, slog.String("source", ti.Source))
	}
	if ti.ToolCallID != "" {
		attrs = append(attrs, slog.String("tool_call_id", ti.ToolCallID))
	}
	if ti.ThreadID != "" {
		attrs = append(attrs, slog.String("thread_id", ti.ThreadID))
	}
	if ti.RunID != "" {
		attrs = append(attrs, slog.String("run_id", ti.RunID))
	}
	if ti.CalendarID != "" {
		attrs = append(attrs, slog.String("calendar_id", ti.CalendarID))
	}
	if len(ti.Arguments) > 0 {
		attrs = append(attrs, slog.Any("arguments", ti.Arguments))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(source, tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		Source:    source,
		StartTime: time.Now(),
	}
}

// WithToolCall sets the correlation IDs of the assistant run.
func (ti *ToolInvocation) WithToolCall(toolCallID, threadID, runID string) *ToolInvocation {
	ti.ToolCallID = toolCallID
	ti.ThreadID = threadID
	ti.RunID = runID
	return ti
}

// WithCalendar sets the target calendar.
func (ti *ToolInvocation) WithCalendar(calendarID string) *ToolInvocation {
	ti.CalendarID = calendarID
	return ti
}

// WithArguments records the call arguments.
func (ti *ToolInvocation) WithArguments(args map[string]any) *ToolInvocation {
	ti.Arguments = args
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger provides structured audit logging for tool invocations.
// A nil *AuditLogger logs nothing.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default argument values are not logged.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs a tool invocation. With IncludePII the full audit
// attributes are used, otherwise the reduced operational set.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = ti.LogAuditAttrs()
	} else {
		attrs = ti.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
