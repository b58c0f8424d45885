package scheduling

import (
	"cmp"
	"slices"
	"time"
)

// FirstN returns the first n slots of free, which is expected to be in
// chronological order.
func FirstN(free []Slot, n int) []Slot {
	if n <= 0 || len(free) == 0 {
		return []Slot{}
	}
	if n > len(free) {
		n = len(free)
	}
	return slices.Clone(free[:n])
}

// NearestN returns up to n distinct slots whose starts are closest to
// preferred. Selection is by absolute distance with ties going to the earlier
// slot; the result is returned in chronological order.
func NearestN(free []Slot, preferred time.Time, n int) []Slot {
	if n <= 0 || len(free) == 0 {
		return []Slot{}
	}

	ranked := slices.Clone(free)
	slices.SortStableFunc(ranked, func(a, b Slot) int {
		if c := cmp.Compare(distance(a.Start, preferred), distance(b.Start, preferred)); c != 0 {
			return c
		}
		return a.Start.Compare(b.Start)
	})

	picked := make([]Slot, 0, n)
	for _, s := range ranked {
		if len(picked) == n {
			break
		}
		if containsStart(picked, s.Start) {
			continue
		}
		picked = append(picked, s)
	}

	slices.SortFunc(picked, func(a, b Slot) int {
		return a.Start.Compare(b.Start)
	})
	return picked
}

// ExcludeStart returns slots without any slot starting at t.
func ExcludeStart(slots []Slot, t time.Time) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if !s.Start.Equal(t) {
			out = append(out, s)
		}
	}
	return out
}

// IsExactlyFree reports whether the slot starting at start overlaps none of
// the busy intervals. No candidate generation is involved.
func (c Config) IsExactlyFree(start time.Time, busy []Interval) bool {
	return isFree(c.SlotAt(start), busy)
}

func distance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

func containsStart(slots []Slot, t time.Time) bool {
	for _, s := range slots {
		if s.Start.Equal(t) {
			return true
		}
	}
	return false
}
