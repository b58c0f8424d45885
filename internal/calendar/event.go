package calendar

import (
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/scheduling"
)

// sourceProperty tags events created by this service.
const (
	sourcePropertyKey   = "source"
	sourcePropertyValue = "retell-booking"
)

func (c *Client) buildEvent(id string, slot scheduling.Slot, meta booking.Metadata) *calendar.Event {
	return &calendar.Event{
		Id:          id,
		Summary:     eventSummary(c.summaryPrefix, meta),
		Description: eventDescription(meta),
		Start: &calendar.EventDateTime{
			DateTime: slot.Start.Format(time.RFC3339),
			TimeZone: c.timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: slot.End.Format(time.RFC3339),
			TimeZone: c.timeZone,
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{sourcePropertyKey: sourcePropertyValue},
		},
	}
}

func eventSummary(prefix string, meta booking.Metadata) string {
	name := strings.TrimSpace(meta.FullName)
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + " - " + name
	}
}

func eventDescription(meta booking.Metadata) string {
	var b strings.Builder
	line := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			b.WriteString(label)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\n")
		}
	}
	line("Name", meta.FullName)
	line("Email", meta.Email)
	line("Phone", meta.Phone)
	line("Business type", meta.BusinessType)
	line("Notes", meta.Notes)
	return strings.TrimSuffix(b.String(), "\n")
}
