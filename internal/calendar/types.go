package calendar

import (
	calendar "google.golang.org/api/calendar/v3"
)

// CreatedEvent is the calendar's record of an inserted event.
type CreatedEvent struct {
	ID       string
	HTMLLink string
	Summary  string
	Start    string // local dateTime as echoed by the calendar
	TimeZone string
}

// InsertResult is the outcome of inserting one event. Exactly one of
// Created and Err is set.
type InsertResult struct {
	Event   *Event
	Created *CreatedEvent
	Err     error
}

// OK reports whether the insert succeeded.
func (r InsertResult) OK() bool {
	return r.Err == nil && r.Created != nil
}

// toCreatedEvent converts a Google Calendar event to a CreatedEvent
func toCreatedEvent(event *calendar.Event) *CreatedEvent {
	if event == nil {
		return &CreatedEvent{}
	}

	created := &CreatedEvent{
		ID:       event.Id,
		HTMLLink: event.HtmlLink,
		Summary:  event.Summary,
	}

	if event.Start != nil {
		created.Start = event.Start.DateTime
		if created.Start == "" {
			created.Start = event.Start.Date
		}
		created.TimeZone = event.Start.TimeZone
	}

	return created
}
