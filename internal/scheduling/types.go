package scheduling

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End).
// Busy intervals reported by the calendar use this type; they are only read.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Slot is a bookable appointment window. End is always Start plus the
// configured duration and Start is aligned to the configured granularity.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Interval returns the slot as a half-open interval.
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Duration returns the length of the slot.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// In returns a copy of the slot with both endpoints expressed in loc.
func (s Slot) In(loc *time.Location) Slot {
	return Slot{Start: s.Start.In(loc), End: s.End.In(loc)}
}

// String implements fmt.Stringer.
func (s Slot) String() string {
	return fmt.Sprintf("%s/%s", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))
}
