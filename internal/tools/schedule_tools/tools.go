package schedule_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calassist/internal/calendar"
	"github.com/teemow/calassist/internal/dispatch"
	"github.com/teemow/calassist/internal/server"
	"github.com/teemow/calassist/internal/toolcall"
	"github.com/teemow/calassist/internal/tools/batch"
	"github.com/teemow/calassist/internal/tools/common"
)

// Tool names.
const (
	ScheduleEventTool  = dispatch.ScheduleEventName
	ScheduleEventsTool = "schedule_events"
	CalendarColorsTool = "calendar_colors"
)

// Tools returns the tool definitions registered by RegisterScheduleTools.
func Tools() []mcp.Tool {
	return []mcp.Tool{scheduleEventTool(), scheduleEventsTool(), calendarColorsTool()}
}

// RegisterScheduleTools registers the scheduling tools with the MCP server.
func RegisterScheduleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil {
		return fmt.Errorf("server context is required")
	}

	s.AddTool(scheduleEventTool(), common.InstrumentedToolHandler(ScheduleEventTool, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleScheduleEvent(ctx, request, sc)
		}))

	s.AddTool(scheduleEventsTool(), common.InstrumentedToolHandler(ScheduleEventsTool, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleScheduleEvents(ctx, request, sc)
		}))

	s.AddTool(calendarColorsTool(), common.InstrumentedToolHandler(CalendarColorsTool, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCalendarColors(ctx, request)
		}))

	return nil
}

func scheduleEventTool() mcp.Tool {
	return mcp.NewTool(ScheduleEventTool,
		mcp.WithDescription("Add an event to the configured calendar"),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Local start time (YYYY-MM-DDTHH:MM:SS) in the server's time zone"),
		),
		mcp.WithString("end",
			mcp.Description("Local end time (YYYY-MM-DDTHH:MM:SS). Defaults to one hour after start"),
		),
		mcp.WithString("color",
			mcp.Description(dispatch.ColorDescription()),
		),
	)
}

func scheduleEventsTool() mcp.Tool {
	return mcp.NewTool(ScheduleEventsTool,
		mcp.WithDescription("Add several events to the configured calendar. Each event is inserted separately and reported in its own result"),
		mcp.WithArray("events",
			mcp.Required(),
			mcp.Description("Events with the same fields as schedule_event"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"summary": map[string]any{"type": "string"},
					"start":   map[string]any{"type": "string"},
					"end":     map[string]any{"type": "string"},
					"color":   map[string]any{"type": "string"},
				},
				"required": []string{"summary", "start"},
			}),
		),
	)
}

func calendarColorsTool() mcp.Tool {
	return mcp.NewTool(CalendarColorsTool,
		mcp.WithDescription("List the event color names and their calendar color IDs"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func handleScheduleEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	call := toolcall.New(common.CallID(ctx), ScheduleEventTool, request.GetArguments())

	output, err := dispatch.ScheduleEventHandler(sc.EventAdder()).Handle(ctx, call)
	if err != nil {
		return mcp.NewToolResultError(dispatch.ErrorOutput(call.Name(), err)), nil
	}
	if err := call.SetResult(output); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(output), nil
}

func handleScheduleEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	items, err := batch.ParseObjectArray(request.GetArguments()["events"], "events")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	adder := sc.EventAdder()
	results := make([]batch.Result, len(items))

	// Events that fail validation are reported without being sent.
	var (
		events  []*calendar.Event
		indexes []int
	)
	for i, item := range items {
		event, err := adder.CreateEvent(item)
		if err != nil {
			results[i] = batch.NewErrorResult(i, err)
			continue
		}
		events = append(events, event)
		indexes = append(indexes, i)
	}

	for j, r := range adder.AddEvents(ctx, events) {
		i := indexes[j]
		message := ""
		if r.OK() {
			message = dispatch.ScheduledOutput(r.Event)
		}
		results[i] = batch.FromInsertResult(i, r, message)
	}

	summary := batch.Summarize(results)
	text := batch.FormatResults(results)
	if summary.Successful == 0 {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

func handleCalendarColors(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	for _, name := range calendar.ColorNames() {
		fmt.Fprintf(&sb, "%s: %s\n", calendar.ColorID(name), name)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
