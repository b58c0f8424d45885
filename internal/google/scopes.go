package google

import (
	calendar "google.golang.org/api/calendar/v3"
	sheets "google.golang.org/api/sheets/v4"
)

// DefaultScopes are the OAuth scopes the booking service needs: free/busy
// queries and event inserts on the calendar, and row appends on the sheet.
var DefaultScopes = []string{
	calendar.CalendarScope,
	sheets.SpreadsheetsScope,
}
