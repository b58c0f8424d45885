package scheduling

// FilterFree returns the slots that overlap none of the busy intervals,
// preserving their order.
func FilterFree(slots []Slot, busy []Interval) []Slot {
	free := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if isFree(s, busy) {
			free = append(free, s)
		}
	}
	return free
}

func isFree(s Slot, busy []Interval) bool {
	iv := s.Interval()
	for _, b := range busy {
		if Overlaps(iv, b) {
			return false
		}
	}
	return true
}
