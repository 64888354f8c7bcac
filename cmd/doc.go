// Package cmd implements the command-line interface for calassist.
//
// This package provides the following commands:
//   - schedule: Send a scheduling request to the assistant and add the events it asks for
//   - add-event: Add one event to the calendar directly
//   - serve: Start the MCP server to provide the scheduling tools to AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The schedule command is the default command when no subcommand is specified.
package cmd
