package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/calassist/internal/instrumentation"
	"github.com/teemow/calassist/internal/logging"
)

// EventAdder owns a calendar session: the inserter, the target calendar and
// the time zone shared by every event it builds.
type EventAdder struct {
	inserter   Inserter
	calendarID string
	location   *time.Location
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// AdderOption configures an EventAdder.
type AdderOption func(*EventAdder)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) AdderOption {
	return func(a *EventAdder) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) AdderOption {
	return func(a *EventAdder) {
		a.metrics = metrics
	}
}

// NewEventAdder creates an EventAdder inserting into calendarID. A nil loc means UTC.
func NewEventAdder(inserter Inserter, calendarID string, loc *time.Location, opts ...AdderOption) *EventAdder {
	if loc == nil {
		loc = time.UTC
	}
	a := &EventAdder{
		inserter:   inserter,
		calendarID: calendarID,
		location:   loc,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.WithService(a.logger, instrumentation.ServiceCalendar)
	return a
}

// CalendarID returns the target calendar.
func (a *EventAdder) CalendarID() string {
	return a.calendarID
}

// Location returns the time zone events are created in.
func (a *EventAdder) Location() *time.Location {
	return a.location
}

// CreateEvent builds an event from tool call arguments in the adder's time zone.
func (a *EventAdder) CreateEvent(args map[string]any) (*Event, error) {
	return EventFromArgs(args, a.location)
}

// AddEvents inserts each event with one call per event. A failed insert is
// reported in its own result and does not stop the remaining inserts.
// Results are returned in input order.
func (a *EventAdder) AddEvents(ctx context.Context, events []*Event) []InsertResult {
	results := make([]InsertResult, 0, len(events))
	for _, event := range events {
		results = append(results, a.addEvent(ctx, event))
	}
	return results
}

func (a *EventAdder) addEvent(ctx context.Context, event *Event) InsertResult {
	ctx, span := instrumentation.StartProviderSpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationInsert,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(a.calendarID).Build()...)
	defer span.End()

	start := time.Now()
	created, err := a.inserter.InsertEvent(ctx, a.calendarID, event)
	duration := time.Since(start)
	if err == nil && created == nil {
		err = fmt.Errorf("%w: empty response", ErrProvider)
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
		a.metrics.RecordCalendarInsert(ctx, a.calendarID, instrumentation.StatusError, duration)
		a.logger.ErrorContext(ctx, "failed to insert event",
			logging.Calendar(a.calendarID),
			slog.String("summary", event.Summary()),
			slog.String("start", event.StartText()),
			logging.Status(logging.StatusError),
			logging.Err(err))
		return InsertResult{Event: event, Err: err}
	}

	instrumentation.SetSpanSuccess(span)
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithEvent(created.ID).Build()...)
	a.metrics.RecordCalendarInsert(ctx, a.calendarID, instrumentation.StatusSuccess, duration)
	a.logger.InfoContext(ctx, "event created",
		logging.Calendar(a.calendarID),
		logging.Event(created.ID),
		slog.String("link", created.HTMLLink),
		logging.Status(logging.StatusSuccess))
	a.logger.DebugContext(ctx, "event details",
		slog.String("summary", created.Summary),
		slog.String("start", created.Start),
		slog.String("time_zone", created.TimeZone),
		slog.Duration(logging.KeyDuration, duration))

	return InsertResult{Event: event, Created: created}
}
