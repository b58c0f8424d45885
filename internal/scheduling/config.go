package scheduling

import (
	"fmt"
	"time"
)

// Default scheduling rules.
const (
	DefaultLeadMinutes       = 120
	DefaultDurationMinutes   = 30
	DefaultStepMinutes       = 30
	DefaultSearchDays        = 14
	DefaultBusinessStartHour = 9
	DefaultBusinessEndHour   = 17
	DefaultTimeZone          = "America/New_York"
)

// Config holds the business rules every slot computation is parameterized by.
// It is built once at startup and passed by value; nothing mutates it after
// Validate succeeds.
type Config struct {
	// LeadMinutes is the minimum delay between now and the earliest bookable start.
	LeadMinutes int

	// DurationMinutes is the length of every slot.
	DurationMinutes int

	// StepMinutes is the granularity slot starts align to. It must divide 60.
	StepMinutes int

	// SearchDays is the number of calendar days scanned for candidates,
	// starting at the day of the earliest bookable instant.
	SearchDays int

	// BusinessStartHour and BusinessEndHour bound the local day, [start, end).
	BusinessStartHour int
	BusinessEndHour   int

	// TimeZone is the IANA identifier Location was loaded from.
	TimeZone string

	// Location is the zone all local-day arithmetic happens in.
	Location *time.Location
}

// DefaultConfig returns the default rules in the given location.
func DefaultConfig(loc *time.Location) Config {
	name := DefaultTimeZone
	if loc != nil {
		name = loc.String()
	}
	return Config{
		LeadMinutes:       DefaultLeadMinutes,
		DurationMinutes:   DefaultDurationMinutes,
		StepMinutes:       DefaultStepMinutes,
		SearchDays:        DefaultSearchDays,
		BusinessStartHour: DefaultBusinessStartHour,
		BusinessEndHour:   DefaultBusinessEndHour,
		TimeZone:          name,
		Location:          loc,
	}
}

// Validate checks that the rules are internally consistent.
func (c Config) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	if c.LeadMinutes < 0 {
		return fmt.Errorf("lead minutes must not be negative, got %d", c.LeadMinutes)
	}
	if c.DurationMinutes <= 0 {
		return fmt.Errorf("duration minutes must be positive, got %d", c.DurationMinutes)
	}
	if c.StepMinutes <= 0 || c.StepMinutes > 60 || 60%c.StepMinutes != 0 {
		return fmt.Errorf("step minutes must be a divisor of 60, got %d", c.StepMinutes)
	}
	if c.SearchDays <= 0 {
		return fmt.Errorf("search days must be positive, got %d", c.SearchDays)
	}
	if c.BusinessStartHour < 0 || c.BusinessStartHour > 23 {
		return fmt.Errorf("business start hour must be within 0-23, got %d", c.BusinessStartHour)
	}
	if c.BusinessEndHour < 1 || c.BusinessEndHour > 24 {
		return fmt.Errorf("business end hour must be within 1-24, got %d", c.BusinessEndHour)
	}
	if c.BusinessEndHour <= c.BusinessStartHour {
		return fmt.Errorf("business end hour (%d) must be after start hour (%d)", c.BusinessEndHour, c.BusinessStartHour)
	}
	if c.DurationMinutes > (c.BusinessEndHour-c.BusinessStartHour)*60 {
		return fmt.Errorf("duration of %d minutes does not fit in business hours", c.DurationMinutes)
	}
	return nil
}

// Lead returns the lead time as a duration.
func (c Config) Lead() time.Duration {
	return time.Duration(c.LeadMinutes) * time.Minute
}

// Duration returns the slot length as a duration.
func (c Config) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}

// Step returns the granularity as a duration.
func (c Config) Step() time.Duration {
	return time.Duration(c.StepMinutes) * time.Minute
}

// Earliest returns the earliest instant a slot may start at, given now.
func (c Config) Earliest(now time.Time) time.Time {
	return now.In(c.Location).Add(c.Lead())
}

// SlotAt returns the slot starting at start.
func (c Config) SlotAt(start time.Time) Slot {
	start = start.In(c.Location)
	return Slot{Start: start, End: start.Add(c.Duration())}
}

// businessWindow returns the open and close instants of the local day containing t.
func (c Config) businessWindow(t time.Time) (time.Time, time.Time) {
	local := t.In(c.Location)
	y, m, d := local.Date()
	open := time.Date(y, m, d, c.BusinessStartHour, 0, 0, 0, c.Location)
	closing := time.Date(y, m, d, c.BusinessEndHour, 0, 0, 0, c.Location)
	return open, closing
}
