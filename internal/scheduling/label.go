package scheduling

// FormatSlotLabel renders a slot for read-back to a caller,
// e.g. "Tue, Feb 11 at 2:00 PM–2:30 PM".
func FormatSlotLabel(s Slot) string {
	return s.Start.Format("Mon, Jan 2 at 3:04 PM") + "–" + s.End.Format("3:04 PM")
}

// FormatSlotLabels renders each slot with FormatSlotLabel.
func FormatSlotLabels(slots []Slot) []string {
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		labels = append(labels, FormatSlotLabel(s))
	}
	return labels
}
