// Package calendar turns scheduling requests into Google Calendar events.
//
// An Event is built from a summary, a local start and end time, an optional
// color and the time zone of the session. Events serialize to the calendar's
// insert format with ToWireFormat or ToGoogle.
//
// EventAdder owns the calendar session. It builds events from tool call
// arguments and inserts them one by one, reporting a result per event so a
// rejected insert never hides the others.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, "service-account.json")
//	if err != nil {
//	    return err
//	}
//	adder := calendar.NewEventAdder(client, "primary", loc)
//
//	event, err := adder.CreateEvent(map[string]any{
//	    "summary": "Standup",
//	    "start":   "2024-07-10T09:00:00",
//	})
//	if err != nil {
//	    return err
//	}
//	for _, result := range adder.AddEvents(ctx, []*calendar.Event{event}) {
//	    ...
//	}
package calendar
