package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.

// CalendarLabel reduces a calendar ID to a low-cardinality label.
// Calendar IDs are either "primary" or an address-like identifier; for the
// latter only the domain is kept.
//
// Example:
//
//	CalendarLabel("primary")                                   // "primary"
//	CalendarLabel("team@example.com")                          // "example.com"
//	CalendarLabel("abc123@group.calendar.google.com")          // "group.calendar.google.com"
//	CalendarLabel("")                                          // "unknown"
func CalendarLabel(calendarID string) string {
	if calendarID == "" {
		return "unknown"
	}
	if calendarID == "primary" {
		return calendarID
	}

	parts := strings.Split(calendarID, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// Operation names for assistant and Google API metrics.
// Status, service and exporter constants are defined in config.go.
const (
	OperationCreateThread      = "create_thread"
	OperationCreateMessage     = "create_message"
	OperationCreateRun         = "create_run"
	OperationRetrieveRun       = "retrieve_run"
	OperationSubmitToolOutputs = "submit_tool_outputs"
	OperationCancelRun         = "cancel_run"
	OperationListMessages      = "list_messages"
	OperationInsert            = "insert"
)
