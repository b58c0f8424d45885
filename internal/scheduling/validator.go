package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// Reason identifies why a requested instant was rejected.
type Reason string

// Rejection reasons, in the order the checks run.
const (
	ReasonMalformedTime        Reason = "malformed_time"
	ReasonTooSoonOrPast        Reason = "too_soon_or_past"
	ReasonBeyondHorizon        Reason = "beyond_horizon"
	ReasonNonBusinessDay       Reason = "non_business_day"
	ReasonOutsideBusinessHours Reason = "outside_business_hours"
	ReasonBadGranularity       Reason = "bad_granularity"
)

// Rejection is returned when a caller supplied instant cannot be booked.
// It is user-correctable and never retried automatically.
type Rejection struct {
	Reason Reason
	Detail string
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// naiveLayouts are accepted when the input carries no offset; they are read
// in the configured zone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseInstant parses an RFC 3339 timestamp, or a timestamp without offset
// interpreted in loc. The result is expressed in loc.
func ParseInstant(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", raw)
}

// ValidateRequest checks a caller supplied start instant against the rules
// and returns the slot it designates. Checks run in a fixed order and stop at
// the first failure; the returned error is then a *Rejection.
//
// The checks need no calendar access so a request can be turned away before
// any network call is made. Instants with a wrong year are caught by the lead
// time check when in the past and by the horizon check when in the future.
func (c Config) ValidateRequest(raw string, now time.Time) (Slot, error) {
	start, err := ParseInstant(raw, c.Location)
	if err != nil {
		return Slot{}, reject(ReasonMalformedTime, "%v", err)
	}

	if earliest := c.Earliest(now); start.Before(earliest) {
		return Slot{}, reject(ReasonTooSoonOrPast, "earliest bookable start is %s", earliest.Format(time.RFC3339))
	}

	if end := c.HorizonEnd(now); !start.Before(end) {
		return Slot{}, reject(ReasonBeyondHorizon, "bookings open through %s", end.Add(-time.Nanosecond).Format("2006-01-02"))
	}

	if !c.IsBusinessDay(start) {
		return Slot{}, reject(ReasonNonBusinessDay, "%s is a %s", start.Format("2006-01-02"), start.Weekday())
	}

	slot := c.SlotAt(start)
	open, closing := c.businessWindow(start)
	if slot.Start.Before(open) || slot.End.After(closing) {
		return Slot{}, reject(ReasonOutsideBusinessHours, "appointments run %02d:00-%02d:00", c.BusinessStartHour, c.BusinessEndHour)
	}

	if !IsAligned(start, c.StepMinutes) {
		return Slot{}, reject(ReasonBadGranularity, "start times must fall on %d minute boundaries", c.StepMinutes)
	}

	return slot, nil
}
