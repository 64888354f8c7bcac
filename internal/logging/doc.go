// Package logging provides structured logging utilities for calassist.
//
// All logging goes through the standard library's slog package. This package
// keeps attribute names consistent between the assistant orchestrator, the
// tool-call dispatcher and the calendar adder so that one run can be followed
// across log lines.
//
// # Usage Patterns
//
//	logger := logging.WithOperation(slog.Default(), "calendar.insert")
//	logger.Info("event created",
//	    logging.Calendar(calendarID),
//	    logging.Status(logging.StatusSuccess))
//
// Secrets such as the assistant API key are never logged directly; use
// SanitizeToken to log their presence.
package logging
