// Package booking_tools exposes the booking service as MCP tools for voice
// agents:
//   - booking_find_slots: open slots, earliest or nearest a preferred time
//   - booking_check_slot: whether one slot can be booked
//   - booking_book_appointment: book a slot for a caller
//
// Tool arguments go through the same decoding as HTTP request bodies, so
// the field aliases accepted by the API are accepted here too.
package booking_tools
