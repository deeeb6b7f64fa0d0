// Package cpm implements the Critical Path Method forward and backward
// passes over a project's task graph: earliest/latest start and finish,
// slack, and critical-path membership.
//
// All arithmetic happens in working-hour offset space (float64 hours
// elapsed since the project's start instant) rather than directly in
// time.Time, because calendar.Calendar already collapses non-working time
// out of that space — once a moment is converted to an offset, adding a
// task's duration_hours to it is plain addition, with no day-boundary or
// weekend-skip logic needed a second time. time.Time values are derived
// from offsets only at the end, via calendar.AddWorkingHours, for display.
package cpm

import (
	"time"

	"dagr/internal/calendar"
	"dagr/internal/dagerr"
	"dagr/internal/graph"
	"dagr/internal/project"
)

// TaskResult is one task's computed schedule: working-hour offsets from
// the project start plus their time.Time equivalents, slack, and
// critical-path membership.
type TaskResult struct {
	ID string

	ES, EF, LS, LF float64
	ESTime         time.Time
	EFTime         time.Time
	LSTime         time.Time
	LFTime         time.Time

	Slack    float64
	Critical bool
}

// Result is the full-project CPM output.
type Result struct {
	Tasks       map[string]TaskResult
	Horizon     float64 // project makespan, in working hours from start
	HorizonTime time.Time
}

const epsilon = 1e-6

// Engine computes a Result from a project's current state.
type Engine struct{}

// Compute runs the forward and backward passes. g must already be a valid
// (acyclic) graph built from state's current tasks.
func (Engine) Compute(state *project.State, cal *calendar.Calendar, g *graph.Graph) (Result, []dagerr.Warning, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return Result{}, nil, err
	}

	byID := make(map[string]*project.Task, len(state.Tasks))
	for i := range state.Tasks {
		byID[state.Tasks[i].ID] = &state.Tasks[i]
	}

	parents := make(map[string][]string, len(state.Tasks))
	for _, id := range order {
		t := byID[id]
		for _, dep := range t.DependsOn {
			parents[id] = append(parents[id], dep)
		}
	}

	start, err := cal.ProjectStartInstant()
	if err != nil {
		return Result{}, nil, err
	}

	var warnings []dagerr.Warning
	results := make(map[string]TaskResult, len(state.Tasks))

	// Forward pass: earliest start/finish.
	for _, id := range order {
		t := byID[id]
		var es, ef float64

		baseReady := 0.0
		for _, dep := range parents[id] {
			pt := byID[dep]
			if pt.Flexible {
				// Flexible predecessors never gate a dependent's
				// readiness: pt's EF, and with it whatever ancestors
				// pushed pt later, is left out of baseReady.
				continue
			}
			if pr, ok := results[dep]; ok && pr.EF > baseReady {
				baseReady = pr.EF
			}
		}

		floor := 0.0
		if t.ProposedStart != nil {
			if f, err := cal.ElapsedHours(t.ProposedStart.Time); err == nil {
				floor = f
			}
		}
		es = baseReady
		if floor > es {
			es = floor
		}

		switch t.Status {
		case project.StatusDone:
			// Done tasks never push downstream later than their real
			// completion: ef comes from actual_finish, and es is clamped
			// down to it rather than overridden outright, so a done task
			// still reports an es consistent with its dependency chain.
			if t.ActualFinish != nil {
				ef, _ = cal.ElapsedHours(*t.ActualFinish)
				if es > ef {
					es = ef
				}
			} else {
				ef = es
			}
		case project.StatusInProgress:
			if t.ActualStart != nil {
				es, _ = cal.ElapsedHours(*t.ActualStart)
			}
			// Resolved open question: an in-progress task still counts its
			// full duration_hours as remaining effort rather than
			// subtracting elapsed time, since dagr has no notion of
			// fractional task completion to subtract against.
			ef = es + t.DurationHours
		default:
			ef = es + t.DurationHours
		}

		esTime, _ := cal.AddWorkingHours(start, es)
		efTime, _ := cal.AddWorkingHours(start, ef)
		results[id] = TaskResult{ID: id, ES: es, EF: ef, ESTime: esTime, EFTime: efTime}
	}

	horizon := 0.0
	for id, r := range results {
		if byID[id].Flexible {
			continue
		}
		if r.EF > horizon {
			horizon = r.EF
		}
	}

	children := make(map[string][]string, len(state.Tasks))
	for _, id := range order {
		for _, dep := range parents[id] {
			children[dep] = append(children[dep], id)
		}
	}

	revOrder, err := g.ReverseTopologicalOrder()
	if err != nil {
		return Result{}, nil, err
	}

	// Backward pass: latest start/finish.
	for _, id := range revOrder {
		t := byID[id]
		r := results[id]

		deadlineCap := horizon
		deadlineEnd, hasDeadline := 0.0, false
		if t.Deadline != nil {
			if end, err := cal.ElapsedHours(t.Deadline.Time.AddDate(0, 0, 1)); err == nil {
				deadlineEnd, hasDeadline = end, true
				if end < deadlineCap {
					deadlineCap = end
				}
			}
		}

		lf := deadlineCap
		if !t.Flexible {
			for _, child := range children[id] {
				if cr, ok := results[child]; ok && cr.LS < lf {
					lf = cr.LS
				}
			}
		}
		ls := lf - t.DurationHours

		slack := ls - r.ES
		r.LF = lf
		r.LS = ls
		r.Slack = slack
		switch {
		case t.Status == project.StatusDone:
			// A done task is only critical if it already breached its own
			// deadline; otherwise it's history, not a scheduling risk.
			r.Critical = hasDeadline && r.EF > deadlineEnd
		default:
			r.Critical = !t.Flexible && slack <= epsilon
		}
		r.LFTime, _ = cal.AddWorkingHours(start, lf)
		r.LSTime, _ = cal.AddWorkingHours(start, ls)
		results[id] = r
	}

	for _, id := range order {
		t := byID[id]
		if !t.Flexible {
			continue
		}
		descendants, err := g.ReachableDescendants(id)
		if err != nil {
			continue
		}
		for d := range descendants {
			if !byID[d].Flexible {
				warnings = append(warnings, dagerr.Warnf(
					"flexible task %s has non-flexible descendant %s; %s's readiness ignores %s's completion",
					id, d, d, id))
				break
			}
		}
	}

	horizonTime, _ := cal.AddWorkingHours(start, horizon)
	return Result{Tasks: results, Horizon: horizon, HorizonTime: horizonTime}, warnings, nil
}

// CriticalPath returns task ids on the critical path in topological order.
func (r Result) CriticalPath(order []string) []string {
	var path []string
	for _, id := range order {
		if tr, ok := r.Tasks[id]; ok && tr.Critical {
			path = append(path, id)
		}
	}
	return path
}
