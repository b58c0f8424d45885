package scheduling

import "time"

// Candidates returns every slot that could be offered across the search
// horizon, in ascending order.
//
// The horizon starts on the local day of now plus the lead time and spans
// SearchDays calendar days. Weekends are skipped. Within a day the cursor
// starts at BusinessStartHour and advances by StepMinutes while the whole
// slot still ends by BusinessEndHour; slots starting before the earliest
// bookable instant are dropped.
func (c Config) Candidates(now time.Time) []Slot {
	earliest := c.Earliest(now)
	y, m, d := earliest.Date()
	duration := c.Duration()
	step := c.Step()

	var slots []Slot
	for i := 0; i < c.SearchDays; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, c.Location)
		if !c.IsBusinessDay(day) {
			continue
		}

		open, closing := c.businessWindow(day)
		for cursor := open; !cursor.Add(duration).After(closing); cursor = cursor.Add(step) {
			if cursor.Before(earliest) {
				continue
			}
			slots = append(slots, Slot{Start: cursor, End: cursor.Add(duration)})
		}
	}
	return slots
}

// HorizonEnd returns the local midnight that closes the search horizon.
// No candidate starts at or after it.
func (c Config) HorizonEnd(now time.Time) time.Time {
	y, m, d := c.Earliest(now).Date()
	return time.Date(y, m, d+c.SearchDays, 0, 0, 0, 0, c.Location)
}

// Window returns the span covered by slots, which must be in ascending order.
// ok is false when slots is empty.
func Window(slots []Slot) (timeMin, timeMax time.Time, ok bool) {
	if len(slots) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return slots[0].Start, slots[len(slots)-1].End, true
}
