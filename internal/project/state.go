// Package project holds the DAGr project aggregate: its Configuration, its
// Task arena, and every mutation operation that can change them. Every
// mutation goes through apply(), which snapshots the state, runs the
// mutation against the snapshot, re-validates invariants, and only then
// commits — so a rejected mutation never leaves State partially changed
// (grounded on the teacher's campaign snapshot-validate-commit pattern in
// internal/campaign).
package project

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dagr/internal/calendar"
	"dagr/internal/dagerr"
	"dagr/internal/graph"
)

// State is the full in-memory project aggregate. Tasks is an arena-style
// slice; ids are looked up by linear scan rather than a cached index map,
// so there is no index to invalidate when tasks are added, removed, or
// reordered during ImportMerge.
type State struct {
	Config Configuration
	Tasks  []Task
}

// New returns an empty project seeded with cfg.
func New(cfg Configuration) *State {
	return &State{Config: cfg}
}

// Task looks up a task by id.
func (s *State) Task(id string) (*Task, bool) {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i], true
		}
	}
	return nil, false
}

func suffixNum(id string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "T-"))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *State) nextID() string {
	max := 0
	for _, t := range s.Tasks {
		if n, ok := suffixNum(t.ID); ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("T-%d", max+1)
}

// Clone deep-copies State for apply()'s snapshot-and-rollback.
func (s *State) Clone() *State {
	c := &State{Config: s.Config}
	c.Config.CapacityOverrides = make(map[string]float64, len(s.Config.CapacityOverrides))
	for k, v := range s.Config.CapacityOverrides {
		c.Config.CapacityOverrides[k] = v
	}
	c.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return c
}

// Graph derives a dependency graph.Graph fresh from the current Tasks.
func (s *State) Graph() (*graph.Graph, error) {
	nodes := make([]graph.Node, len(s.Tasks))
	for i, t := range s.Tasks {
		nodes[i] = graph.Node{ID: t.ID, DependsOn: t.DependsOn}
	}
	return graph.New(nodes)
}

// CalendarConfig projects Configuration into the independent calendar.Config
// shape calendar.New expects.
func (s *State) CalendarConfig() calendar.Config {
	return calendar.Config{
		StartDateTime:     s.Config.StartDateTime,
		HoursPerDay:       s.Config.HoursPerDay,
		DayStart:          s.Config.DayStartTime.Duration,
		SkipWeekends:      s.Config.SkipWeekends,
		CapacityOverrides: s.Config.CapacityOverrides,
	}
}

// Validate re-checks every structural invariant: non-empty unique ids,
// non-empty names, non-negative durations, valid statuses, and (via Graph)
// no unknown dependency references or cycles.
func (s *State) Validate() error {
	seen := make(map[string]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.ID == "" {
			return dagerr.InvalidFieldErr("id", "must be non-empty")
		}
		if seen[t.ID] {
			return dagerr.InvalidFieldErr("id", fmt.Sprintf("duplicate id %q", t.ID))
		}
		seen[t.ID] = true
		if t.Name == "" {
			return dagerr.InvalidFieldErr("name", fmt.Sprintf("task %s has an empty name", t.ID))
		}
		if t.DurationHours < 0 {
			return dagerr.InvalidFieldErr("duration_hours", fmt.Sprintf("task %s has a negative duration", t.ID))
		}
		if !t.Status.Valid() {
			return dagerr.InvalidFieldErr("status", fmt.Sprintf("task %s has unknown status %q", t.ID, t.Status))
		}
	}
	_, err := s.Graph()
	return err
}

// mutation is the signature apply() drives: it runs against a private
// clone and may return advisory warnings alongside a hard error.
type mutation func(*State) ([]dagerr.Warning, error)

// apply snapshots s, runs m against the snapshot, validates the result,
// and only commits the snapshot back into *s if both succeed.
func (s *State) apply(m mutation) ([]dagerr.Warning, error) {
	clone := s.Clone()
	warnings, err := m(clone)
	if err != nil {
		return nil, err
	}
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	*s = *clone
	return warnings, nil
}

// TaskInput is the set of user-suppliable fields for AddTask.
type TaskInput struct {
	ID            string // optional; auto-assigned if empty
	Name          string
	DurationHours float64
	DependsOn     []string
	Deadline      *Date
	ProposedStart *Date
	Background    bool
	Flexible      bool
	Project       string
	Tags          []string
	Notes         string
}

// AddTask creates a task, auto-assigning the next "T-<n>" id unless one was
// supplied. It warns, without blocking, when the new task depends on a
// flexible task — per design note, dependents still ignore a flexible
// predecessor's own schedule for their own readiness.
func (s *State) AddTask(in TaskInput) (Task, []dagerr.Warning, error) {
	var created Task
	warnings, err := s.apply(func(st *State) ([]dagerr.Warning, error) {
		if in.Name == "" {
			return nil, dagerr.InvalidFieldErr("name", "must be non-empty")
		}
		if in.DurationHours < 0 {
			return nil, dagerr.InvalidFieldErr("duration_hours", "must be >= 0")
		}

		id := in.ID
		if id == "" {
			id = st.nextID()
		} else if _, exists := st.Task(id); exists {
			return nil, dagerr.InvalidFieldErr("id", fmt.Sprintf("task %q already exists", id))
		}

		var warns []dagerr.Warning
		for _, dep := range in.DependsOn {
			dt, ok := st.Task(dep)
			if !ok {
				return nil, dagerr.UnknownTaskErr(dep)
			}
			if dt.Flexible {
				warns = append(warns, dagerr.Warnf(
					"%s depends on flexible task %s; flexible predecessors are ignored for readiness", id, dep))
			}
		}

		t := Task{
			ID: id, Name: in.Name, DurationHours: in.DurationHours,
			DependsOn: append([]string{}, in.DependsOn...), Deadline: in.Deadline,
			ProposedStart: in.ProposedStart, Background: in.Background, Flexible: in.Flexible,
			Project: in.Project, Tags: append([]string{}, in.Tags...), Notes: in.Notes,
			Status: StatusNotStarted, extra: map[string]json.RawMessage{},
		}
		st.Tasks = append(st.Tasks, t)
		created = t
		return warns, nil
	})
	if err != nil {
		return Task{}, nil, err
	}
	return created, warnings, nil
}

// TaskPatch carries the optional mutable fields UpdateTask may change. A
// nil pointer means "leave unchanged"; Clear flags explicitly null out an
// optional field since a nil *Date can't distinguish "unchanged" from
// "clear" on its own.
type TaskPatch struct {
	Name                *string
	DurationHours       *float64
	AddDeps             []string
	RemoveDeps          []string
	Deadline            *Date
	ClearDeadline       bool
	ProposedStart       *Date
	ClearProposedStart  bool
	Background          *bool
	Flexible            *bool
	Project             *string
	Tags                *[]string
	Notes               *string
}

// UpdateTask applies patch to the task id, re-validating the whole project
// (including acyclicity) before committing. Like AddTask, it warns without
// blocking when an added dependency is a flexible task.
func (s *State) UpdateTask(id string, patch TaskPatch) ([]dagerr.Warning, error) {
	return s.apply(func(st *State) ([]dagerr.Warning, error) {
		t, ok := st.Task(id)
		if !ok {
			return nil, dagerr.UnknownTaskErr(id)
		}
		var warns []dagerr.Warning

		if patch.Name != nil {
			if *patch.Name == "" {
				return nil, dagerr.InvalidFieldErr("name", "must be non-empty")
			}
			t.Name = *patch.Name
		}
		if patch.DurationHours != nil {
			if *patch.DurationHours < 0 {
				return nil, dagerr.InvalidFieldErr("duration_hours", "must be >= 0")
			}
			t.DurationHours = *patch.DurationHours
		}
		for _, dep := range patch.AddDeps {
			dt, ok := st.Task(dep)
			if !ok {
				return nil, dagerr.UnknownTaskErr(dep)
			}
			if dep == id {
				return nil, dagerr.InvalidFieldErr("depends_on", "a task cannot depend on itself")
			}
			if dt.Flexible {
				warns = append(warns, dagerr.Warnf(
					"%s depends on flexible task %s; flexible predecessors are ignored for readiness", id, dep))
			}
			already := false
			for _, d := range t.DependsOn {
				if d == dep {
					already = true
					break
				}
			}
			if !already {
				t.DependsOn = append(t.DependsOn, dep)
			}
		}
		if len(patch.RemoveDeps) > 0 {
			remove := make(map[string]bool, len(patch.RemoveDeps))
			for _, d := range patch.RemoveDeps {
				remove[d] = true
			}
			kept := t.DependsOn[:0:0]
			for _, d := range t.DependsOn {
				if !remove[d] {
					kept = append(kept, d)
				}
			}
			t.DependsOn = kept
		}
		if patch.ClearDeadline {
			t.Deadline = nil
		} else if patch.Deadline != nil {
			d := *patch.Deadline
			t.Deadline = &d
		}
		if patch.ClearProposedStart {
			t.ProposedStart = nil
		} else if patch.ProposedStart != nil {
			d := *patch.ProposedStart
			t.ProposedStart = &d
		}
		if patch.Background != nil {
			t.Background = *patch.Background
		}
		if patch.Flexible != nil {
			t.Flexible = *patch.Flexible
		}
		if patch.Project != nil {
			t.Project = *patch.Project
		}
		if patch.Tags != nil {
			t.Tags = append([]string{}, (*patch.Tags)...)
		}
		if patch.Notes != nil {
			t.Notes = *patch.Notes
		}
		return warns, nil
	})
}

// DeleteTask removes a task and scrubs its id out of every other task's
// DependsOn, per the design note that deletion never leaves a dangling
// reference behind for the caller to clean up by hand.
func (s *State) DeleteTask(id string) ([]dagerr.Warning, error) {
	return s.apply(func(st *State) ([]dagerr.Warning, error) {
		idx := -1
		for i, t := range st.Tasks {
			if t.ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, dagerr.UnknownTaskErr(id)
		}
		st.Tasks = append(st.Tasks[:idx], st.Tasks[idx+1:]...)
		for i := range st.Tasks {
			kept := st.Tasks[i].DependsOn[:0:0]
			for _, d := range st.Tasks[i].DependsOn {
				if d != id {
					kept = append(kept, d)
				}
			}
			st.Tasks[i].DependsOn = kept
		}
		return nil, nil
	})
}

// SetStatus transitions a task's Status, enforcing the forward-only
// StatusTransition rule (plus the explicit regression back to
// not_started), and stamps ActualStart/ActualFinish as a side effect.
// Marking a task done with no recorded start is allowed but returns a
// Warning and backfills ActualStart to now, per the "in-progress duration"
// open question's resolution: every done task has a start, even a
// synthetic one, so downstream duration math never sees a nil.
func (s *State) SetStatus(id string, to Status, now time.Time) ([]dagerr.Warning, error) {
	return s.apply(func(st *State) ([]dagerr.Warning, error) {
		t, ok := st.Task(id)
		if !ok {
			return nil, dagerr.UnknownTaskErr(id)
		}
		if !to.Valid() {
			return nil, dagerr.InvalidFieldErr("status", fmt.Sprintf("unknown status %q", to))
		}
		from := t.Status
		if !validTransition(from, to) {
			return nil, dagerr.New(dagerr.StatusTransition, "cannot move task %s from %s to %s", id, from, to).
				WithSuggestion("valid moves are not_started->in_progress->done, or done/in_progress->not_started")
		}

		var warns []dagerr.Warning
		switch to {
		case StatusInProgress:
			if t.ActualStart == nil {
				n := now
				t.ActualStart = &n
			}
		case StatusDone:
			if t.ActualStart == nil {
				warns = append(warns, dagerr.Warnf("task %s marked done with no recorded start; backfilling actual_start to now", id))
				n := now
				t.ActualStart = &n
			}
			n := now
			t.ActualFinish = &n
		case StatusNotStarted:
			t.ActualStart = nil
			t.ActualFinish = nil
		}
		t.Status = to
		return warns, nil
	})
}

// Reset unconditionally returns a task to not_started, clearing its actual
// timestamps, bypassing SetStatus's transition check for the explicit
// "undo" command.
func (s *State) Reset(id string) ([]dagerr.Warning, error) {
	return s.apply(func(st *State) ([]dagerr.Warning, error) {
		t, ok := st.Task(id)
		if !ok {
			return nil, dagerr.UnknownTaskErr(id)
		}
		t.Status = StatusNotStarted
		t.ActualStart = nil
		t.ActualFinish = nil
		return nil, nil
	})
}

// Capacity sets (or replaces) a per-date capacity override.
func (s *State) Capacity(date Date, hours float64) ([]dagerr.Warning, error) {
	return s.apply(func(st *State) ([]dagerr.Warning, error) {
		if hours < 0 {
			return nil, dagerr.InvalidFieldErr("hours", "must be >= 0")
		}
		if st.Config.CapacityOverrides == nil {
			st.Config.CapacityOverrides = map[string]float64{}
		}
		st.Config.CapacityOverrides[date.String()] = hours
		return nil, nil
	})
}

// ImportTask is one entry of a bulk ImportMerge payload. DependsOn entries
// may reference either an existing task's id or another import entry's
// Name — resolved batch-locally before any task is appended. If ID is set
// and matches an existing task, the entry updates that task in place
// instead of creating a new one.
type ImportTask struct {
	ID            string
	Name          string
	DurationHours float64
	DependsOn     []string
	Deadline      *Date
	ProposedStart *Date
	Background    bool
	Flexible      bool
	Project       string
	Tags          []string
	Notes         string
}

// ImportMerge appends or updates a batch of tasks, resolving each
// DependsOn entry first as a task name (a batch entry's name takes
// precedence over an existing task with the same name) and then as an
// existing task id, and returns each entry's id (freshly assigned for a
// creation, unchanged for an update) in input order.
func (s *State) ImportMerge(tasks []ImportTask) ([]string, []dagerr.Warning, error) {
	var ids []string
	warnings, err := s.apply(func(st *State) ([]dagerr.Warning, error) {
		nameToID := make(map[string]string, len(st.Tasks)+len(tasks))
		for _, t := range st.Tasks {
			if t.Name != "" {
				nameToID[t.Name] = t.ID
			}
		}

		maxSuffix := 0
		for _, t := range st.Tasks {
			if n, ok := suffixNum(t.ID); ok && n > maxSuffix {
				maxSuffix = n
			}
		}

		isUpdate := make([]bool, len(tasks))
		assigned := make([]string, len(tasks))
		for i, it := range tasks {
			if it.ID != "" {
				if _, ok := st.Task(it.ID); ok {
					isUpdate[i] = true
					assigned[i] = it.ID
					if it.Name != "" {
						nameToID[it.Name] = it.ID
					}
					continue
				}
			}
			maxSuffix++
			id := fmt.Sprintf("T-%d", maxSuffix)
			assigned[i] = id
			if it.Name != "" {
				nameToID[it.Name] = id
			}
		}

		for i, it := range tasks {
			if it.Name == "" {
				return nil, dagerr.InvalidFieldErr("name", "must be non-empty")
			}
			resolved := make([]string, 0, len(it.DependsOn))
			for _, ref := range it.DependsOn {
				if id, ok := nameToID[ref]; ok {
					resolved = append(resolved, id)
					continue
				}
				if _, ok := st.Task(ref); ok {
					resolved = append(resolved, ref)
					continue
				}
				return nil, dagerr.New(dagerr.UnresolvedReference,
					"import task %q references unknown dependency %q", it.Name, ref)
			}

			if isUpdate[i] {
				existing, _ := st.Task(assigned[i])
				existing.Name = it.Name
				existing.DurationHours = it.DurationHours
				existing.DependsOn = resolved
				existing.Deadline = it.Deadline
				existing.ProposedStart = it.ProposedStart
				existing.Background = it.Background
				existing.Flexible = it.Flexible
				existing.Project = it.Project
				existing.Tags = append([]string{}, it.Tags...)
				existing.Notes = it.Notes
				ids = append(ids, existing.ID)
				continue
			}

			nt := Task{
				ID: assigned[i], Name: it.Name, DurationHours: it.DurationHours,
				DependsOn: resolved, Deadline: it.Deadline, ProposedStart: it.ProposedStart,
				Background: it.Background, Flexible: it.Flexible, Project: it.Project,
				Tags: append([]string{}, it.Tags...), Notes: it.Notes,
				Status: StatusNotStarted, extra: map[string]json.RawMessage{},
			}
			st.Tasks = append(st.Tasks, nt)
			ids = append(ids, nt.ID)
		}
		return nil, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return ids, warnings, nil
}
