package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSlotLabel(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "Tue, Feb 11 at 2:00 PM–2:30 PM", FormatSlotLabel(cfg.SlotAt(at(2025, time.February, 11, 14, 0))))
	assert.Equal(t, "Mon, Feb 10 at 9:30 AM–10:00 AM", FormatSlotLabel(cfg.SlotAt(at(2025, time.February, 10, 9, 30))))
}

func TestFormatSlotLabels(t *testing.T) {
	cfg := testConfig()
	labels := FormatSlotLabels(slotsAt(cfg,
		at(2025, time.February, 11, 14, 0),
		at(2025, time.February, 11, 14, 30),
	))
	assert.Equal(t, []string{
		"Tue, Feb 11 at 2:00 PM–2:30 PM",
		"Tue, Feb 11 at 2:30 PM–3:00 PM",
	}, labels)
	assert.Empty(t, FormatSlotLabels(nil))
}
