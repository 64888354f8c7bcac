// Package schedule_tools exposes event scheduling as MCP tools.
//
// Tools:
//   - schedule_event: add one event to the configured calendar
//   - schedule_events: add several events, reporting each one separately
//   - calendar_colors: list the accepted color names and IDs
//
// Events use the calendar and time zone of the server's EventAdder, so the
// same arguments an assistant sends to schedule_event work here unchanged.
package schedule_tools
