package scheduling

import "time"

// IsBusinessDay reports whether t falls on Monday through Friday in loc.
func IsBusinessDay(t time.Time, loc *time.Location) bool {
	if loc != nil {
		t = t.In(loc)
	}
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// IsBusinessDay reports whether t falls on a business day in the configured zone.
func (c Config) IsBusinessDay(t time.Time) bool {
	return IsBusinessDay(t, c.Location)
}

// Overlaps reports whether two half-open intervals intersect.
// Intervals that only touch at an endpoint do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// AlignToGranularity rounds t up to the next multiple of stepMinutes counted
// from the top of t's hour. Instants already on a boundary are returned as is.
func AlignToGranularity(t time.Time, stepMinutes int) time.Time {
	if stepMinutes <= 0 {
		return t
	}
	y, m, d := t.Date()
	top := time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
	step := time.Duration(stepMinutes) * time.Minute

	elapsed := t.Sub(top)
	n := elapsed / step
	if elapsed%step != 0 {
		n++
	}

	aligned := top.Add(n * step)
	if next := top.Add(time.Hour); aligned.After(next) {
		return next
	}
	return aligned
}

// IsAligned reports whether t sits exactly on a granularity boundary.
func IsAligned(t time.Time, stepMinutes int) bool {
	return AlignToGranularity(t, stepMinutes).Equal(t)
}
