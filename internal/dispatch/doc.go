// Package dispatch routes assistant tool calls to handlers by function name.
//
// The Dispatcher turns every call into an Outcome carrying the text that is
// submitted back to the run. Handler failures and unknown function names are
// reported in that text instead of aborting the run, so the assistant can
// explain the problem to the user.
//
// Every dispatch is traced, recorded in metrics and written to the audit log.
package dispatch
