// Package selector turns a computed CPM result and leveled Schedule into
// task recommendations: the single next task to work on, every background
// task ready to kick off, a "dopamine menu" of bucketed options, and
// the set of tasks at risk of missing their deadline. Every function here
// is a pure read of (project.State, cpm.Result, leveler.Schedule) — no
// mutation, no I/O, matching the selector's "pure function" design note.
package selector

import (
	"sort"
	"strconv"
	"strings"

	"dagr/internal/cpm"
	"dagr/internal/leveler"
	"dagr/internal/project"
)

func suffix(id string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "T-"))
	if err != nil {
		return 0, false
	}
	return n, true
}

func hasTag(t project.Task, tags ...string) bool {
	for _, want := range tags {
		for _, got := range t.Tags {
			if got == want {
				return true
			}
		}
	}
	return false
}

// Candidate is one recommendable task, carrying the CPM figures a human
// needs to judge it at a glance.
type Candidate struct {
	Task     project.Task
	ES       float64
	Slack    float64
	Critical bool
}

func candidatesOf(state *project.State, result cpm.Result, filter func(project.Task) bool) []Candidate {
	byID := make(map[string]*project.Task, len(state.Tasks))
	for i := range state.Tasks {
		byID[state.Tasks[i].ID] = &state.Tasks[i]
	}

	ready := func(t project.Task) bool {
		for _, dep := range t.DependsOn {
			pt := byID[dep]
			if pt.Flexible {
				continue
			}
			if pt.Status != project.StatusDone {
				return false
			}
		}
		return true
	}

	var out []Candidate
	for _, t := range state.Tasks {
		if t.Status == project.StatusDone || !ready(t) {
			continue
		}
		if filter != nil && !filter(t) {
			continue
		}
		r := result.Tasks[t.ID]
		out = append(out, Candidate{Task: t, ES: r.ES, Slack: r.Slack, Critical: r.Critical})
	}
	sortBySlackThenES(out)
	return out
}

func sortBySlackThenES(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Slack != cands[j].Slack {
			return cands[i].Slack < cands[j].Slack
		}
		return cands[i].ES < cands[j].ES
	})
}

// NextTask picks the single best attended task to work on right now: the
// ready, not-done, non-background, non-flexible task with the least slack.
// An already-started attended task overrides that ranking entirely — it is
// returned instead, since finishing in-flight work beats starting new work.
func NextTask(state *project.State, result cpm.Result) (Candidate, bool) {
	var inProgress []Candidate
	for _, t := range state.Tasks {
		if t.Status == project.StatusInProgress && !t.Background {
			r := result.Tasks[t.ID]
			inProgress = append(inProgress, Candidate{Task: t, ES: r.ES, Slack: r.Slack, Critical: r.Critical})
		}
	}
	if len(inProgress) > 0 {
		sortBySlackThenES(inProgress)
		return inProgress[0], true
	}

	cands := candidatesOf(state, result, func(t project.Task) bool { return !t.Background && !t.Flexible })
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[0], true
}

// KickoffBackground returns every background task that is ready and not yet
// started, so all of them can be kicked off alongside the next attended task.
func KickoffBackground(state *project.State, result cpm.Result) []Candidate {
	return candidatesOf(state, result, func(t project.Task) bool {
		return t.Background && t.Status == project.StatusNotStarted
	})
}

// Bucket is one labeled group of a DopamineMenu.
type Bucket struct {
	Name  string
	Items []Candidate
}

const (
	bucketQuickWins   = "Quick Wins"
	bucketLowEnergy   = "Low Energy"
	bucketHyperfocus  = "Hyperfocus"
	bucketOtherQuests = "Other Side Quests"
	quickWinMaxHours  = 1.0
)

// DopamineMenu buckets every ready flexible task into exactly one of four
// categories, first-match-wins in this order: Quick Wins (short, < 1h, or
// tagged "quick"), Low Energy (tagged "low-energy" or "braindead"),
// Hyperfocus (tagged "hyperfocus" or "deep-work"), and everything else
// falls into Other Side Quests. Within a bucket, items sort ascending by
// duration then id.
func DopamineMenu(state *project.State, result cpm.Result) []Bucket {
	cands := candidatesOf(state, result, func(t project.Task) bool { return t.Flexible })

	buckets := map[string][]Candidate{
		bucketQuickWins:   nil,
		bucketLowEnergy:   nil,
		bucketHyperfocus:  nil,
		bucketOtherQuests: nil,
	}
	order := []string{bucketQuickWins, bucketLowEnergy, bucketHyperfocus, bucketOtherQuests}

	for _, c := range cands {
		switch {
		case c.Task.DurationHours < quickWinMaxHours || hasTag(c.Task, "quick"):
			buckets[bucketQuickWins] = append(buckets[bucketQuickWins], c)
		case hasTag(c.Task, "low-energy", "braindead"):
			buckets[bucketLowEnergy] = append(buckets[bucketLowEnergy], c)
		case hasTag(c.Task, "hyperfocus", "deep-work"):
			buckets[bucketHyperfocus] = append(buckets[bucketHyperfocus], c)
		default:
			buckets[bucketOtherQuests] = append(buckets[bucketOtherQuests], c)
		}
	}

	out := make([]Bucket, 0, len(order))
	for _, name := range order {
		items := buckets[name]
		sortByDurationThenID(items)
		out = append(out, Bucket{Name: name, Items: items})
	}
	return out
}

func sortByDurationThenID(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Task.DurationHours != cands[j].Task.DurationHours {
			return cands[i].Task.DurationHours < cands[j].Task.DurationHours
		}
		si, oki := suffix(cands[i].Task.ID)
		sj, okj := suffix(cands[j].Task.ID)
		if oki && okj {
			return si < sj
		}
		return cands[i].Task.ID < cands[j].Task.ID
	})
}

// AtRisk is a task whose scheduled finish (per the leveled Schedule)
// lands after its own deadline.
type AtRisk struct {
	Task         project.Task
	ScheduledEnd project.Date
	DeadlineDate project.Date
}

// AtRiskTasks scans the leveled Schedule for any task with a deadline
// whose last block ends after that deadline's calendar date.
func AtRiskTasks(state *project.State, schedule leveler.Schedule) []AtRisk {
	lastEnd := make(map[string]project.Date, len(state.Tasks))
	for _, b := range schedule.Blocks {
		d := project.NewDate(b.End)
		if cur, ok := lastEnd[b.TaskID]; !ok || d.After(cur.Time) {
			lastEnd[b.TaskID] = d
		}
	}

	var out []AtRisk
	for _, t := range state.Tasks {
		if t.Deadline == nil || t.Status == project.StatusDone {
			continue
		}
		end, ok := lastEnd[t.ID]
		if !ok {
			continue
		}
		if end.After(t.Deadline.Time) {
			out = append(out, AtRisk{Task: t, ScheduledEnd: end, DeadlineDate: *t.Deadline})
		}
	}
	return out
}
