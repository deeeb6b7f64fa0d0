package leveler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dagr/internal/calendar"
	"dagr/internal/cpm"
	"dagr/internal/project"
)

func mustLoc() *time.Location { return time.UTC }

func newTestState(t *testing.T) *project.State {
	t.Helper()
	cfg := project.DefaultConfiguration(time.Date(2026, 2, 23, 9, 0, 0, 0, mustLoc())) // Monday
	return project.New(cfg)
}

func addTask(t *testing.T, s *project.State, id string, hours float64, deps []string, background bool) {
	t.Helper()
	_, _, err := s.AddTask(project.TaskInput{ID: id, Name: id, DurationHours: hours, DependsOn: deps, Background: background})
	require.NoError(t, err)
}

func addFlexibleTask(t *testing.T, s *project.State, id string, hours float64, deps []string) {
	t.Helper()
	_, _, err := s.AddTask(project.TaskInput{ID: id, Name: id, DurationHours: hours, DependsOn: deps, Flexible: true})
	require.NoError(t, err)
}

func levelState(t *testing.T, s *project.State) Schedule {
	t.Helper()
	g, err := s.Graph()
	require.NoError(t, err)
	cal := calendar.New(s.CalendarConfig())
	result, _, err := (cpm.Engine{}).Compute(s, cal, g)
	require.NoError(t, err)
	sched, err := (Leveler{}).Level(s, cal, g, result)
	require.NoError(t, err)
	return sched
}

func TestLevel_SplitsTaskAcrossDayBoundary(t *testing.T) {
	s := newTestState(t)
	addTask(t, s, "T-1", 10, nil, false) // 8h day one, 2h day two

	sched := levelState(t, s)
	require.Len(t, sched.Blocks, 2)
	assert.Equal(t, 8.0, sched.Blocks[0].Hours)
	assert.Equal(t, 2.0, sched.Blocks[1].Hours)
	assert.Equal(t, "T-1", sched.Blocks[0].TaskID)
	assert.Equal(t, "T-1", sched.Blocks[1].TaskID)
}

func TestLevel_AttendedAndBackgroundStreamsAreIndependent(t *testing.T) {
	s := newTestState(t)
	addTask(t, s, "T-1", 4, nil, false)
	addTask(t, s, "T-2", 4, nil, true)

	sched := levelState(t, s)
	require.Len(t, sched.Blocks, 2)

	var attendedBlock, backgroundBlock *Block
	for i := range sched.Blocks {
		b := &sched.Blocks[i]
		switch b.Stream {
		case StreamAttended:
			attendedBlock = b
		case StreamBackground:
			backgroundBlock = b
		}
	}
	require.NotNil(t, attendedBlock)
	require.NotNil(t, backgroundBlock)
	// Both streams run their own task on day one, starting at the same
	// day-start instant, since neither contends with the other's capacity.
	assert.Equal(t, attendedBlock.Start, backgroundBlock.Start)
}

func TestLevel_ZeroDurationTaskCompletesImmediately(t *testing.T) {
	s := newTestState(t)
	addTask(t, s, "T-1", 0, nil, false)
	addTask(t, s, "T-2", 2, []string{"T-1"}, false)

	sched := levelState(t, s)
	// T-1 contributes no block of its own; T-2 still gets scheduled on day one.
	for _, b := range sched.Blocks {
		assert.NotEqual(t, "T-1", b.TaskID)
	}
	require.Len(t, sched.Blocks, 1)
	assert.Equal(t, "T-2", sched.Blocks[0].TaskID)
}

func TestLevel_FlexibleTaskNeverOccupiesAStream(t *testing.T) {
	s := newTestState(t)
	addFlexibleTask(t, s, "T-1", 6, nil)
	addTask(t, s, "T-2", 2, nil, false)

	sched := levelState(t, s)
	// The flexible task consumes no capacity in either stream; only T-2
	// shows up as a block.
	for _, b := range sched.Blocks {
		assert.NotEqual(t, "T-1", b.TaskID)
	}
	require.Len(t, sched.Blocks, 1)
	assert.Equal(t, "T-2", sched.Blocks[0].TaskID)
}

func TestLevel_NonFlexibleDependentOfFlexibleTaskIsNotBlocked(t *testing.T) {
	s := newTestState(t)
	addFlexibleTask(t, s, "T-1", 6, nil)
	addTask(t, s, "T-2", 2, []string{"T-1"}, false)

	// T-2 depends on a flexible task, so per the readiness rule it must be
	// schedulable immediately even though T-1 is never placed.
	sched := levelState(t, s)
	require.Len(t, sched.Blocks, 1)
	assert.Equal(t, "T-2", sched.Blocks[0].TaskID)
}

func TestLevel_DeadlockedZeroCapacityIsUnschedulable(t *testing.T) {
	cfg := project.DefaultConfiguration(time.Date(2026, 2, 23, 9, 0, 0, 0, mustLoc()))
	cfg.HoursPerDay = 0
	cfg.SkipWeekends = false
	// The project's own start date has an hour of capacity so
	// ProjectStartInstant succeeds, but every later day has none, so a
	// 2-hour task can never finish.
	cfg.CapacityOverrides = map[string]float64{"2026-02-23": 1}
	s := project.New(cfg)
	addTask(t, s, "T-1", 2, nil, false)

	g, err := s.Graph()
	require.NoError(t, err)
	cal := calendar.New(s.CalendarConfig())
	result, _, err := (cpm.Engine{}).Compute(s, cal, g)
	require.NoError(t, err)

	_, err = (Leveler{}).Level(s, cal, g, result)
	require.Error(t, err)
}
