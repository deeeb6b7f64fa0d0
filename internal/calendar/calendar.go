// Package calendar implements the bijection between wall-clock moments and
// elapsed working-hour offsets described in the working-day policy: a
// configurable hours-per-day, a day start time-of-day, a weekend-skip
// policy, and per-date capacity overrides.
//
// Calendar is an immutable value built once from a Config and never
// mutated afterward — every method is a pure function of its receiver and
// arguments, per the "Calendar purity" design note.
package calendar

import (
	"time"

	"dagr/internal/dagerr"
	"dagr/internal/logging"
)

// MaxHorizonDays bounds how far into the future a search for positive
// capacity may run before failing with dagerr.UnschedulableHorizon.
const MaxHorizonDays = 10000

// Config mirrors the scheduling-relevant subset of a project's
// Configuration. It is deliberately independent of the project package so
// that project can import calendar without a cycle.
type Config struct {
	// StartDateTime anchors the project; only its calendar date matters
	// for ProjectStartInstant, but callers may pass any wall-clock moment.
	StartDateTime time.Time

	// HoursPerDay is the default working-hour capacity of a day with no
	// override and no weekend-skip.
	HoursPerDay float64

	// DayStart is the time-of-day (as an offset from midnight) at which a
	// working day begins.
	DayStart time.Duration

	// SkipWeekends, when true, gives Saturday and Sunday zero capacity
	// unless overridden.
	SkipWeekends bool

	// CapacityOverrides maps a date key ("2006-01-02") to a capacity that
	// fully replaces both the default capacity and the weekend-skip
	// decision for that date.
	CapacityOverrides map[string]float64
}

// Calendar is the immutable value computed from a Config.
type Calendar struct {
	cfg Config
}

// New builds a Calendar from cfg. The Config is copied (including a fresh
// copy of CapacityOverrides) so later mutation of the caller's map cannot
// reach back into the Calendar.
func New(cfg Config) *Calendar {
	overrides := make(map[string]float64, len(cfg.CapacityOverrides))
	for k, v := range cfg.CapacityOverrides {
		overrides[k] = v
	}
	cfg.CapacityOverrides = overrides
	return &Calendar{cfg: cfg}
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Capacity implements cap(d): override, then weekend-skip, then default.
func (c *Calendar) Capacity(d time.Time) float64 {
	if v, ok := c.cfg.CapacityOverrides[dateKey(d)]; ok {
		return v
	}
	if c.cfg.SkipWeekends {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return 0
		}
	}
	return c.cfg.HoursPerDay
}

// DayStartInstant returns the moment the working day begins on the
// calendar date of d. Exported for callers (the leveler) that need to lay
// out wall-clock blocks within a day rather than just converting to/from
// offsets.
func (c *Calendar) DayStartInstant(d time.Time) time.Time {
	return c.dayStartInstant(d)
}

// dayStartInstant returns the moment the working day begins on the
// calendar date of d.
func (c *Calendar) dayStartInstant(d time.Time) time.Time {
	loc := c.cfg.StartDateTime.Location()
	y, m, day := d.Date()
	midnight := time.Date(y, m, day, 0, 0, 0, 0, loc)
	return midnight.Add(c.cfg.DayStart)
}

// AddWorkingHours returns the moment reached after consuming h working
// hours of capacity starting from t, skipping zero-capacity dates
// entirely. If h is 0, the result is t advanced to the next moment with
// positive remaining capacity.
func (c *Calendar) AddWorkingHours(t time.Time, h float64) (time.Time, error) {
	log := logging.Get(logging.CategoryCalendar)
	d := dateOnly(t)
	cursor := t
	remaining := h

	for i := 0; i < MaxHorizonDays; i++ {
		capD := c.Capacity(d)
		dayStart := c.dayStartInstant(d)

		var p float64
		if cursor.Before(dayStart) {
			p = 0
		} else {
			p = cursor.Sub(dayStart).Hours()
			if p > capD {
				p = capD
			}
		}
		available := capD - p
		if available < 0 {
			available = 0
		}

		if available > 0 && remaining <= available {
			return dayStart.Add(time.Duration((p + remaining) * float64(time.Hour))), nil
		}
		if available > 0 {
			remaining -= available
		}

		d = d.AddDate(0, 0, 1)
		cursor = c.dayStartInstant(d)
	}

	log.Warn("unschedulable horizon reached in AddWorkingHours")
	return time.Time{}, dagerr.New(dagerr.UnschedulableHorizon,
		"no date with positive capacity found within %d days", MaxHorizonDays)
}

// ProjectStartInstant returns the first instant of the first day with
// positive capacity at or after StartDateTime.
func (c *Calendar) ProjectStartInstant() (time.Time, error) {
	d := dateOnly(c.cfg.StartDateTime)
	for i := 0; i < MaxHorizonDays; i++ {
		if c.Capacity(d) > 0 {
			return c.dayStartInstant(d), nil
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Time{}, dagerr.New(dagerr.UnschedulableHorizon,
		"no date with positive capacity found within %d days of project start", MaxHorizonDays)
}

// ElapsedHours is the inverse of AddWorkingHours: the number of working
// hours between ProjectStartInstant() and t.
func (c *Calendar) ElapsedHours(t time.Time) (float64, error) {
	start, err := c.ProjectStartInstant()
	if err != nil {
		return 0, err
	}

	if t.Before(start) {
		return 0, nil
	}

	total := 0.0
	d := dateOnly(start)
	for i := 0; i < MaxHorizonDays && !sameDate(d, dateOnly(t)); i++ {
		total += c.Capacity(d)
		d = d.AddDate(0, 0, 1)
	}

	dayStart := c.dayStartInstant(d)
	p := t.Sub(dayStart).Hours()
	if p < 0 {
		p = 0
	}
	capD := c.Capacity(d)
	if p > capD {
		p = capD
	}
	total += p

	return total, nil
}
