package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		LeadMinutes:       120,
		DurationMinutes:   30,
		StepMinutes:       30,
		SearchDays:        14,
		BusinessStartHour: 9,
		BusinessEndHour:   17,
		TimeZone:          "EST",
		Location:          est,
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing location", func(c *Config) { c.Location = nil }},
		{"negative lead", func(c *Config) { c.LeadMinutes = -1 }},
		{"zero duration", func(c *Config) { c.DurationMinutes = 0 }},
		{"step not dividing hour", func(c *Config) { c.StepMinutes = 25 }},
		{"step above an hour", func(c *Config) { c.StepMinutes = 90 }},
		{"zero horizon", func(c *Config) { c.SearchDays = 0 }},
		{"end before start", func(c *Config) { c.BusinessEndHour = 8 }},
		{"end hour out of range", func(c *Config) { c.BusinessEndHour = 25 }},
		{"duration longer than day", func(c *Config) { c.DurationMinutes = 9 * 60 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCandidates_FirstSlotAfterLead(t *testing.T) {
	cfg := testConfig()
	now := at(2025, time.February, 10, 8, 0) // Monday

	slots := cfg.Candidates(now)
	require.NotEmpty(t, slots)

	assert.True(t, slots[0].Start.Equal(at(2025, time.February, 10, 10, 0)), "first start = %s", slots[0].Start)
	assert.True(t, slots[0].End.Equal(at(2025, time.February, 10, 10, 30)), "first end = %s", slots[0].End)
}

func TestCandidates_HorizonSize(t *testing.T) {
	cfg := testConfig()
	now := at(2025, time.February, 10, 8, 0)

	// Ten business days in two weeks; the first loses 09:00 and 09:30 to the lead time.
	assert.Len(t, cfg.Candidates(now), 14+9*16)
}

func TestCandidates_UnalignedEarliest(t *testing.T) {
	cfg := testConfig()
	now := at(2025, time.February, 10, 8, 7)

	slots := cfg.Candidates(now)
	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Start.Equal(at(2025, time.February, 10, 10, 30)), "first start = %s", slots[0].Start)
}

func TestCandidates_FridayEveningRollsToMonday(t *testing.T) {
	cfg := testConfig()
	now := at(2025, time.February, 14, 18, 0)

	slots := cfg.Candidates(now)
	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Start.Equal(at(2025, time.February, 17, 9, 0)), "first start = %s", slots[0].Start)
}

func TestCandidates_Invariants(t *testing.T) {
	configs := []Config{
		testConfig(),
		func() Config { c := testConfig(); c.DurationMinutes = 45; c.StepMinutes = 15; return c }(),
		func() Config { c := testConfig(); c.LeadMinutes = 0; c.SearchDays = 3; return c }(),
		func() Config { c := testConfig(); c.BusinessStartHour = 8; c.BusinessEndHour = 12; c.DurationMinutes = 60; c.StepMinutes = 20; return c }(),
	}
	nows := []time.Time{
		at(2025, time.February, 10, 8, 0),
		at(2025, time.February, 12, 13, 17),
		at(2025, time.February, 15, 11, 0),
		at(2025, time.February, 14, 23, 59),
	}

	for _, cfg := range configs {
		require.NoError(t, cfg.Validate())
		for _, now := range nows {
			earliest := cfg.Earliest(now)
			slots := cfg.Candidates(now)
			for i, s := range slots {
				assert.Equal(t, cfg.Duration(), s.Duration())
				assert.False(t, s.Start.Before(earliest), "slot %s starts before %s", s, earliest)
				assert.True(t, cfg.IsBusinessDay(s.Start), "slot %s on weekend", s)
				open, closing := cfg.businessWindow(s.Start)
				assert.False(t, s.Start.Before(open), "slot %s before opening", s)
				assert.False(t, s.End.After(closing), "slot %s after closing", s)
				assert.True(t, IsAligned(s.Start, cfg.StepMinutes), "slot %s misaligned", s)
				if i > 0 {
					assert.True(t, slots[i-1].Start.Before(s.Start), "slots out of order at %d", i)
				}
			}
		}
	}
}

func TestHorizonEnd(t *testing.T) {
	cfg := testConfig()
	now := at(2025, time.February, 10, 8, 0)
	assert.True(t, cfg.HorizonEnd(now).Equal(at(2025, time.February, 24, 0, 0)))
}

func TestWindow(t *testing.T) {
	_, _, ok := Window(nil)
	assert.False(t, ok)

	cfg := testConfig()
	slots := cfg.Candidates(at(2025, time.February, 10, 8, 0))
	timeMin, timeMax, ok := Window(slots)
	require.True(t, ok)
	assert.True(t, timeMin.Equal(slots[0].Start))
	assert.True(t, timeMax.Equal(slots[len(slots)-1].End))
}
