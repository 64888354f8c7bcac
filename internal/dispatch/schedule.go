package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/teemow/calassist/internal/calendar"
	"github.com/teemow/calassist/internal/toolcall"
)

// ScheduleEventName is the function the assistant calls to create an event.
const ScheduleEventName = "schedule_event"

// ScheduleEventHandler returns a Handler that creates one calendar event per
// call through adder.
func ScheduleEventHandler(adder *calendar.EventAdder) Handler {
	return HandlerFunc(func(ctx context.Context, call *toolcall.ToolCall) (string, error) {
		event, err := adder.CreateEvent(call.Arguments())
		if err != nil {
			return "", err
		}

		results := adder.AddEvents(ctx, []*calendar.Event{event})
		if len(results) != 1 {
			return "", fmt.Errorf("expected one insert result, got %d", len(results))
		}
		if !results[0].OK() {
			return "", results[0].Err
		}
		return ScheduledOutput(event), nil
	})
}

// ScheduledOutput is the text submitted after an event was inserted.
func ScheduledOutput(event *calendar.Event) string {
	return fmt.Sprintf("Event %s was added to the calendar on %s", event.Summary(), event.StartText())
}

// RegisterScheduleEvent binds the schedule_event handler for adder.
func RegisterScheduleEvent(d *Dispatcher, adder *calendar.EventAdder) {
	d.Register(ScheduleEventName, ScheduleEventHandler(adder))
}

// ScheduleEventFunction describes the schedule_event function for the
// assistant's tool configuration.
func ScheduleEventFunction() openai.FunctionDefinition {
	return openai.FunctionDefinition{
		Name:        ScheduleEventName,
		Description: "Add an event to the user's calendar.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"summary": {
					Type:        jsonschema.String,
					Description: "Title of the event.",
				},
				"start": {
					Type:        jsonschema.String,
					Description: "Local start time as YYYY-MM-DDTHH:MM:SS.",
				},
				"end": {
					Type:        jsonschema.String,
					Description: "Local end time as YYYY-MM-DDTHH:MM:SS. Defaults to one hour after start.",
				},
				"color": {
					Type:        jsonschema.String,
					Description: ColorDescription(),
				},
			},
			Required: []string{"summary", "start"},
		},
	}
}

// ScheduleEventTool wraps ScheduleEventFunction as an assistant tool.
func ScheduleEventTool() openai.Tool {
	fn := ScheduleEventFunction()
	return openai.Tool{Type: openai.ToolTypeFunction, Function: &fn}
}

// ColorDescription documents the accepted color values.
func ColorDescription() string {
	return "Event color: a color ID from 1 to 11 or one of " + strings.Join(calendar.ColorNames(), ", ") + "."
}
