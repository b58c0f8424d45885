// Package cmd implements the command-line interface for retell-booking.
//
// This package provides the following commands:
//   - serve: Start the HTTP API and MCP server (or MCP over stdio)
//   - slots: List open appointment slots
//   - book: Book an appointment
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
