// Package common provides shared utilities for MCP tool implementations:
// the instrumentation wrapper every tool handler goes through and the
// conversion of booking results into tool results.
package common
