package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc() *time.Location { return time.UTC }

func baseConfig() Config {
	return Config{
		StartDateTime: time.Date(2026, 2, 23, 9, 0, 0, 0, mustLoc()), // Monday
		HoursPerDay:   8,
		DayStart:      9 * time.Hour,
		SkipWeekends:  true,
	}
}

func TestCapacity_WeekendSkip(t *testing.T) {
	c := New(baseConfig())
	assert.Equal(t, 8.0, c.Capacity(time.Date(2026, 2, 23, 0, 0, 0, 0, mustLoc()))) // Monday
	assert.Equal(t, 0.0, c.Capacity(time.Date(2026, 2, 28, 0, 0, 0, 0, mustLoc()))) // Saturday
	assert.Equal(t, 0.0, c.Capacity(time.Date(2026, 3, 1, 0, 0, 0, 0, mustLoc())))  // Sunday
}

func TestCapacity_Override(t *testing.T) {
	cfg := baseConfig()
	cfg.CapacityOverrides = map[string]float64{"2026-02-28": 4} // Saturday override
	c := New(cfg)
	assert.Equal(t, 4.0, c.Capacity(time.Date(2026, 2, 28, 0, 0, 0, 0, mustLoc())))
}

func TestAddWorkingHours_WithinDay(t *testing.T) {
	c := New(baseConfig())
	start := time.Date(2026, 2, 23, 9, 0, 0, 0, mustLoc())
	got, err := c.AddWorkingHours(start, 3)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 23, 12, 0, 0, 0, mustLoc()), got)
}

func TestAddWorkingHours_SpillsIntoNextDay(t *testing.T) {
	c := New(baseConfig())
	start := time.Date(2026, 2, 23, 9, 0, 0, 0, mustLoc())
	got, err := c.AddWorkingHours(start, 10) // 8h today + 2h tomorrow
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 24, 11, 0, 0, 0, mustLoc()), got)
}

func TestAddWorkingHours_SkipsWeekend(t *testing.T) {
	c := New(baseConfig())
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, mustLoc()) // Friday
	got, err := c.AddWorkingHours(start, 9)                // 8h Friday + 1h Monday
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, mustLoc()), got)
}

func TestAddWorkingHours_ZeroHoursAdvancesToNextCapacity(t *testing.T) {
	c := New(baseConfig())
	start := time.Date(2026, 2, 28, 9, 0, 0, 0, mustLoc()) // Saturday, zero capacity
	got, err := c.AddWorkingHours(start, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, mustLoc()), got) // next Monday
}

func TestElapsedHours_RoundTrip(t *testing.T) {
	c := New(baseConfig())
	start, err := c.ProjectStartInstant()
	require.NoError(t, err)

	moment, err := c.AddWorkingHours(start, 17) // spans Monday through Wednesday
	require.NoError(t, err)

	elapsed, err := c.ElapsedHours(moment)
	require.NoError(t, err)
	assert.InDelta(t, 17.0, elapsed, 1e-9)
}

func TestProjectStartInstant_SkipsZeroCapacityStart(t *testing.T) {
	cfg := baseConfig()
	cfg.StartDateTime = time.Date(2026, 2, 28, 9, 0, 0, 0, mustLoc()) // Saturday
	c := New(cfg)

	got, err := c.ProjectStartInstant()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, mustLoc()), got)
}

func TestAddWorkingHours_UnschedulableHorizon(t *testing.T) {
	cfg := baseConfig()
	cfg.HoursPerDay = 0
	cfg.SkipWeekends = false
	c := New(cfg)

	_, err := c.AddWorkingHours(cfg.StartDateTime, 1)
	require.Error(t, err)
}
