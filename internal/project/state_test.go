package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dagr/internal/dagerr"
)

func newTestState() *State {
	return New(DefaultConfiguration(time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)))
}

func TestAddTask_AutoAssignsID(t *testing.T) {
	s := newTestState()
	t1, _, err := s.AddTask(TaskInput{Name: "first"})
	require.NoError(t, err)
	assert.Equal(t, "T-1", t1.ID)

	t2, _, err := s.AddTask(TaskInput{Name: "second"})
	require.NoError(t, err)
	assert.Equal(t, "T-2", t2.ID)
}

func TestAddTask_UnknownDependencyRejected(t *testing.T) {
	s := newTestState()
	_, _, err := s.AddTask(TaskInput{Name: "x", DependsOn: []string{"T-99"}})
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.UnknownTask))
	assert.Empty(t, s.Tasks)
}

func TestAddTask_FlexibleDependencyWarns(t *testing.T) {
	s := newTestState()
	flex, _, err := s.AddTask(TaskInput{Name: "flex", Flexible: true})
	require.NoError(t, err)

	_, warns, err := s.AddTask(TaskInput{Name: "dependent", DependsOn: []string{flex.ID}})
	require.NoError(t, err)
	assert.Len(t, warns, 1)
}

func TestUpdateTask_AddDepCreatingCycleRejected(t *testing.T) {
	s := newTestState()
	a, _, _ := s.AddTask(TaskInput{Name: "a"})
	b, _, _ := s.AddTask(TaskInput{Name: "b", DependsOn: []string{a.ID}})

	_, err := s.UpdateTask(a.ID, TaskPatch{AddDeps: []string{b.ID}})
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.CycleDetected))

	// Rejected mutation must not have partially applied.
	got, _ := s.Task(a.ID)
	assert.Empty(t, got.DependsOn)
}

func TestUpdateTask_SelfDependencyRejected(t *testing.T) {
	s := newTestState()
	a, _, _ := s.AddTask(TaskInput{Name: "a"})
	_, err := s.UpdateTask(a.ID, TaskPatch{AddDeps: []string{a.ID}})
	require.Error(t, err)
}

func TestDeleteTask_ScrubsDependents(t *testing.T) {
	s := newTestState()
	a, _, _ := s.AddTask(TaskInput{Name: "a"})
	b, _, _ := s.AddTask(TaskInput{Name: "b", DependsOn: []string{a.ID}})

	_, err := s.DeleteTask(a.ID)
	require.NoError(t, err)

	got, ok := s.Task(b.ID)
	require.True(t, ok)
	assert.Empty(t, got.DependsOn)
}

func TestSetStatus_ForwardTransitions(t *testing.T) {
	s := newTestState()
	a, _, _ := s.AddTask(TaskInput{Name: "a", DurationHours: 2})

	_, err := s.SetStatus(a.ID, StatusInProgress, time.Now())
	require.NoError(t, err)
	got, _ := s.Task(a.ID)
	assert.Equal(t, StatusInProgress, got.Status)
	require.NotNil(t, got.ActualStart)

	_, err = s.SetStatus(a.ID, StatusDone, time.Now())
	require.NoError(t, err)
	got, _ = s.Task(a.ID)
	assert.Equal(t, StatusDone, got.Status)
	require.NotNil(t, got.ActualFinish)
}

func TestSetStatus_DoneWithoutStartWarns(t *testing.T) {
	s := newTestState()
	a, _, _ := s.AddTask(TaskInput{Name: "a"})

	warns, err := s.SetStatus(a.ID, StatusDone, time.Now())
	require.NoError(t, err)
	assert.Len(t, warns, 1)

	got, _ := s.Task(a.ID)
	assert.NotNil(t, got.ActualStart)
}

func TestSetStatus_InvalidTransitionRejected(t *testing.T) {
	s := newTestState()
	a, _, _ := s.AddTask(TaskInput{Name: "a"})
	_, err := s.SetStatus(a.ID, StatusDone, time.Now())
	require.NoError(t, err)

	// done -> in_progress has no direct transition in this lifecycle.
	_, err = s.SetStatus(a.ID, StatusInProgress, time.Now())
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.StatusTransition))
}

func TestReset_ClearsActualTimestamps(t *testing.T) {
	s := newTestState()
	a, _, _ := s.AddTask(TaskInput{Name: "a"})
	_, _ = s.SetStatus(a.ID, StatusInProgress, time.Now())

	_, err := s.Reset(a.ID)
	require.NoError(t, err)
	got, _ := s.Task(a.ID)
	assert.Equal(t, StatusNotStarted, got.Status)
	assert.Nil(t, got.ActualStart)
	assert.Nil(t, got.ActualFinish)
}

func TestImportMerge_ResolvesBatchLocalNames(t *testing.T) {
	s := newTestState()
	ids, _, err := s.ImportMerge([]ImportTask{
		{Name: "design"},
		{Name: "build", DependsOn: []string{"design"}},
		{Name: "ship", DependsOn: []string{"build"}},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	build, ok := s.Task(ids[1])
	require.True(t, ok)
	assert.Equal(t, []string{ids[0]}, build.DependsOn)
}

func TestImportMerge_UnresolvedReferenceRejected(t *testing.T) {
	s := newTestState()
	_, _, err := s.ImportMerge([]ImportTask{{Name: "build", DependsOn: []string{"nonexistent"}}})
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.UnresolvedReference))
}

func TestImportMerge_MatchingIDUpdatesInsteadOfCreating(t *testing.T) {
	s := newTestState()
	a, _, err := s.AddTask(TaskInput{Name: "design", DurationHours: 2})
	require.NoError(t, err)

	ids, _, err := s.ImportMerge([]ImportTask{
		{ID: a.ID, Name: "design v2", DurationHours: 5},
	})
	require.NoError(t, err)
	require.Equal(t, []string{a.ID}, ids)
	assert.Len(t, s.Tasks, 1)

	got, ok := s.Task(a.ID)
	require.True(t, ok)
	assert.Equal(t, "design v2", got.Name)
	assert.InDelta(t, 5, got.DurationHours, 1e-9)
}

func TestImportMerge_UnknownIDFallsBackToCreation(t *testing.T) {
	s := newTestState()
	ids, _, err := s.ImportMerge([]ImportTask{{ID: "T-999", Name: "design"}})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotEqual(t, "T-999", ids[0])
}

func TestImportMerge_UpdateReplacesDependsOnAndResolvesBatchLocalNames(t *testing.T) {
	s := newTestState()
	a, _, err := s.AddTask(TaskInput{Name: "design"})
	require.NoError(t, err)
	b, _, err := s.AddTask(TaskInput{Name: "build", DependsOn: []string{a.ID}})
	require.NoError(t, err)

	ids, _, err := s.ImportMerge([]ImportTask{
		{ID: b.ID, Name: "build", DependsOn: []string{"prep"}},
		{Name: "prep"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	got, ok := s.Task(b.ID)
	require.True(t, ok)
	assert.Equal(t, []string{ids[1]}, got.DependsOn)
}

func TestCapacity_SetsOverride(t *testing.T) {
	s := newTestState()
	d, _ := ParseDate("2026-03-01")
	_, err := s.Capacity(d, 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Config.CapacityOverrides["2026-03-01"])
}

func TestValidate_DuplicateIDRejected(t *testing.T) {
	s := newTestState()
	s.Tasks = []Task{
		{ID: "T-1", Name: "a", Status: StatusNotStarted},
		{ID: "T-1", Name: "b", Status: StatusNotStarted},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.InvalidField))
}
