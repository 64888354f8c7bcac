package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/teemow/calassist/internal/instrumentation"
	"github.com/teemow/calassist/internal/logging"
	"github.com/teemow/calassist/internal/toolcall"
)

// ErrUnsupportedFunction is reported for calls without a registered handler.
var ErrUnsupportedFunction = errors.New("unsupported function")

// unknownToolLabel replaces unregistered function names in metric labels.
const unknownToolLabel = "unknown"

// Handler executes one tool call and returns the text result.
type Handler interface {
	Handle(ctx context.Context, call *toolcall.ToolCall) (string, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, call *toolcall.ToolCall) (string, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, call *toolcall.ToolCall) (string, error) {
	return f(ctx, call)
}

// Outcome is the result of dispatching one tool call. Output is always set,
// also on failure, and has already been stored on Call.
type Outcome struct {
	Call   *toolcall.ToolCall
	Output string
	Err    error
}

// OK reports whether the handler succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Dispatcher maps function names to handlers.
type Dispatcher struct {
	handlers   map[string]Handler
	source     string
	calendarID string
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	audit      *instrumentation.AuditLogger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

// WithAuditLogger sets the audit logger.
func WithAuditLogger(audit *instrumentation.AuditLogger) Option {
	return func(d *Dispatcher) {
		d.audit = audit
	}
}

// WithSource sets the invocation source recorded in metrics and audit logs.
// The default is instrumentation.SourceAssistant.
func WithSource(source string) Option {
	return func(d *Dispatcher) {
		d.source = source
	}
}

// WithCalendarID records the target calendar in audit logs.
func WithCalendarID(calendarID string) Option {
	return func(d *Dispatcher) {
		d.calendarID = calendarID
	}
}

// New creates a Dispatcher without handlers.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler),
		source:   instrumentation.SourceAssistant,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register binds name to h, replacing any previous handler.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Names returns the registered function names in sorted order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DispatchAll dispatches calls in order and returns one Outcome per call.
func (d *Dispatcher) DispatchAll(ctx context.Context, calls []*toolcall.ToolCall) []Outcome {
	outcomes := make([]Outcome, 0, len(calls))
	for _, call := range calls {
		outcomes = append(outcomes, d.Dispatch(ctx, call))
	}
	return outcomes
}

// Dispatch runs the handler registered for call.Name() and stores the
// result text on call.
func (d *Dispatcher) Dispatch(ctx context.Context, call *toolcall.ToolCall) Outcome {
	run := RunFromContext(ctx)

	handler, ok := d.handlers[call.Name()]
	toolLabel := call.Name()
	if !ok {
		toolLabel = unknownToolLabel
	}

	ctx, span := instrumentation.StartToolSpan(ctx, toolLabel,
		instrumentation.NewSpanAttributeBuilder().
			WithToolCall(call.ID()).
			WithRun(run.ThreadID, run.RunID).
			Build()...)
	defer span.End()

	invocation := instrumentation.NewToolInvocation(d.source, call.Name()).
		WithToolCall(call.ID(), run.ThreadID, run.RunID).
		WithCalendar(d.calendarID).
		WithArguments(call.Arguments()).
		WithSpanContext(ctx)

	logger := d.callLogger(ctx, run)
	start := time.Now()

	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnsupportedFunction, call.Name())
		output := UnsupportedOutput(call.Name())
		_ = call.SetResult(output)

		instrumentation.SetSpanError(span, err)
		d.metrics.RecordToolInvocation(ctx, d.source, toolLabel, instrumentation.StatusUnsupported, time.Since(start))
		d.audit.LogToolInvocation(invocation.CompleteWithError(err))
		logger.WarnContext(ctx, "unsupported function requested",
			logging.Tool(call.Name()),
			logging.ToolCallID(call.ID()),
			logging.Status(instrumentation.StatusUnsupported))

		return Outcome{Call: call, Output: output, Err: err}
	}

	output, err := handler.Handle(ctx, call)
	duration := time.Since(start)

	if err != nil {
		output = ErrorOutput(call.Name(), err)
		_ = call.SetResult(output)

		instrumentation.SetSpanError(span, err)
		d.metrics.RecordToolInvocation(ctx, d.source, toolLabel, instrumentation.StatusError, duration)
		d.audit.LogToolInvocation(invocation.CompleteWithError(err))
		logger.ErrorContext(ctx, "tool call failed",
			logging.Tool(call.Name()),
			logging.ToolCallID(call.ID()),
			logging.Status(logging.StatusError),
			logging.Err(err))

		return Outcome{Call: call, Output: output, Err: err}
	}

	_ = call.SetResult(output)

	instrumentation.SetSpanSuccess(span)
	d.metrics.RecordToolInvocation(ctx, d.source, toolLabel, instrumentation.StatusSuccess, duration)
	d.audit.LogToolInvocation(invocation.CompleteSuccess())
	logger.DebugContext(ctx, "tool call handled",
		logging.Tool(call.Name()),
		logging.ToolCallID(call.ID()),
		logging.Status(logging.StatusSuccess))

	return Outcome{Call: call, Output: output}
}

// callLogger attaches the run and the active trace to every record of one call.
func (d *Dispatcher) callLogger(ctx context.Context, run RunInfo) *slog.Logger {
	logger := d.logger
	if run.RunID != "" {
		logger = logging.WithRun(logger, run.ThreadID, run.RunID)
	}
	if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String(logging.KeyTraceID, traceID))
	}
	return logger
}

// UnsupportedOutput is the text submitted for a function without a handler.
func UnsupportedOutput(name string) string {
	return "Unsupported function: " + name
}

// ErrorOutput is the text submitted when a handler fails.
func ErrorOutput(name string, err error) string {
	return fmt.Sprintf("Error: %s failed: %v", name, err)
}
