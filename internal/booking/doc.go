// Package booking orchestrates appointment requests against a calendar.
//
// A Service validates the requested instant, re-checks the exact window
// against the calendar, reserves it, and appends a record to an optional
// sink. The same Service backs the HTTP API, the MCP tools and the CLI.
//
// There is no lock across concurrent bookings. The free/busy re-check runs
// immediately before the reservation, which narrows the window in which two
// callers can claim the same slot but does not close it; the calendar remains
// the source of truth and a double booking there has to be resolved by staff.
// Once the reservation succeeds it is never rolled back, even if the caller
// goes away or the record sink fails.
package booking
