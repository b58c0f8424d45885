// Package calendar implements the booking calendar provider on top of the
// Google Calendar API.
//
// Busy intervals come from a free/busy query against a single calendar, and
// reservations are events inserted with a client generated identifier. The
// identifier is fresh per Reserve call, so it only dedupes transport retries
// made by the API library within that call; a caller that submits the same
// booking twice gets two events. Contact details go into the event description; callers are
// never added as attendees, so no invitations are sent.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, calendar.Options{
//	    CalendarID: "primary",
//	    TimeZone:   "America/New_York",
//	}, opts...)
//	if err != nil {
//	    return err
//	}
//	busy, err := client.QueryBusy(ctx, timeMin, timeMax)
package calendar
