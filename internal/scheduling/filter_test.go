package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterFree(t *testing.T) {
	cfg := testConfig()
	slots := []Slot{
		cfg.SlotAt(at(2025, time.February, 11, 13, 0)),
		cfg.SlotAt(at(2025, time.February, 11, 13, 30)),
		cfg.SlotAt(at(2025, time.February, 11, 14, 0)),
		cfg.SlotAt(at(2025, time.February, 11, 14, 30)),
		cfg.SlotAt(at(2025, time.February, 11, 15, 0)),
	}

	t.Run("no busy keeps everything", func(t *testing.T) {
		assert.Equal(t, slots, FilterFree(slots, nil))
	})

	t.Run("busy block removes overlapping slots only", func(t *testing.T) {
		busy := []Interval{{Start: at(2025, time.February, 11, 13, 45), End: at(2025, time.February, 11, 14, 30)}}
		free := FilterFree(slots, busy)
		assert.Equal(t, []Slot{slots[0], slots[3], slots[4]}, free)
	})

	t.Run("adjacent busy interval does not block", func(t *testing.T) {
		busy := []Interval{{Start: at(2025, time.February, 11, 12, 0), End: at(2025, time.February, 11, 13, 0)}}
		assert.Equal(t, slots, FilterFree(slots, busy))
	})

	t.Run("busy reported in utc", func(t *testing.T) {
		busy := []Interval{{
			Start: time.Date(2025, time.February, 11, 19, 0, 0, 0, time.UTC),
			End:   time.Date(2025, time.February, 11, 19, 30, 0, 0, time.UTC),
		}}
		free := FilterFree(slots, busy)
		assert.NotContains(t, free, slots[2])
		assert.Len(t, free, 4)
	})

	t.Run("free slots never overlap busy", func(t *testing.T) {
		busy := []Interval{
			{Start: at(2025, time.February, 11, 13, 10), End: at(2025, time.February, 11, 13, 20)},
			{Start: at(2025, time.February, 11, 14, 59), End: at(2025, time.February, 11, 16, 0)},
		}
		for _, s := range FilterFree(slots, busy) {
			for _, b := range busy {
				assert.False(t, Overlaps(s.Interval(), b), "%s overlaps busy %v", s, b)
			}
		}
	})
}
