// Package leveler turns a CPM result into a concrete day-by-day schedule:
// an ordered list of Blocks, each the portion of one task worked on one
// day. It runs two independent event-driven simulations over the same
// calendar — an "attended" stream for tasks that need a human at the
// keyboard, and a "background" stream for tasks that don't — each with
// its own capacity pool, so a background task's hours never compete with
// an attended task's for the same slot.
//
// Within a stream, the next task to run is always the one with the least
// CPM slack (ties broken by earliest ES, then ascending id), taken from a
// container/heap priority queue — the same ready-queue-by-slack shape as
// a classic resource-constrained project scheduling heuristic.
package leveler

import (
	"container/heap"
	"strconv"
	"strings"
	"time"

	"dagr/internal/calendar"
	"dagr/internal/cpm"
	"dagr/internal/dagerr"
	"dagr/internal/graph"
	"dagr/internal/project"
)

// Stream identifies which of the two independent capacity pools a Block
// belongs to.
type Stream string

const (
	StreamAttended   Stream = "attended"
	StreamBackground Stream = "background"
)

// Block is one contiguous slice of work on a single task on a single day.
type Block struct {
	TaskID string
	Stream Stream
	Start  time.Time
	End    time.Time
	Hours  float64
}

// Schedule is the full leveled timeline, in chronological block order.
type Schedule struct {
	Blocks []Block
}

const epsilon = 1e-6

func suffix(id string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "T-"))
	if err != nil {
		return 0, false
	}
	return n, true
}

type queueItem struct {
	id    string
	slack float64
	es    float64
}

// taskHeap is a container/heap priority queue ordered by ascending slack,
// then ascending ES, then ascending numeric id suffix.
type taskHeap []queueItem

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].slack != h[j].slack {
		return h[i].slack < h[j].slack
	}
	if h[i].es != h[j].es {
		return h[i].es < h[j].es
	}
	si, oki := suffix(h[i].id)
	sj, okj := suffix(h[j].id)
	if oki && okj {
		return si < sj
	}
	return h[i].id < h[j].id
}
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x interface{}) { *h = append(*h, x.(queueItem)) }
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Leveler runs the two-stream simulation.
type Leveler struct{}

// Level produces a Schedule. result must come from cpm.Engine.Compute over
// the same state and graph.
func (Leveler) Level(state *project.State, cal *calendar.Calendar, g *graph.Graph, result cpm.Result) (Schedule, error) {
	byID := make(map[string]*project.Task, len(state.Tasks))
	for i := range state.Tasks {
		byID[state.Tasks[i].ID] = &state.Tasks[i]
	}

	parents := make(map[string][]string, len(state.Tasks))
	children := make(map[string][]string, len(state.Tasks))
	for id, t := range byID {
		parents[id] = t.DependsOn
		for _, dep := range t.DependsOn {
			children[dep] = append(children[dep], id)
		}
	}

	remaining := make(map[string]float64, len(state.Tasks))
	satisfied := make(map[string]bool, len(state.Tasks))
	placed := make(map[string]bool, len(state.Tasks))
	queued := make(map[string]bool, len(state.Tasks))

	attended := &taskHeap{}
	background := &taskHeap{}
	heap.Init(attended)
	heap.Init(background)

	ready := func(id string) bool {
		for _, dep := range parents[id] {
			if byID[dep].Flexible {
				continue
			}
			if !satisfied[dep] {
				return false
			}
		}
		return true
	}

	var blocks []Block
	var enqueue func(id string)
	var complete func(id string)

	// A zero-duration task needs no calendar capacity to finish, so it's
	// completed the instant it becomes ready rather than sitting in a
	// heap waiting for a day with available hours.
	enqueue = func(id string) {
		if queued[id] || placed[id] || byID[id].Flexible {
			return
		}
		if remaining[id] <= epsilon {
			complete(id)
			return
		}
		t := byID[id]
		r := result.Tasks[id]
		item := queueItem{id: id, slack: r.Slack, es: r.ES}
		if t.Background {
			heap.Push(background, item)
		} else {
			heap.Push(attended, item)
		}
		queued[id] = true
	}

	complete = func(id string) {
		placed[id] = true
		satisfied[id] = true
		for _, child := range children[id] {
			if !placed[child] && ready(child) {
				enqueue(child)
			}
		}
	}

	for _, t := range state.Tasks {
		if t.Status == project.StatusDone {
			satisfied[t.ID] = true
			placed[t.ID] = true
		} else if t.Flexible {
			// Flexible tasks never occupy a stream; the Selector decides
			// when they get worked. ready() already ignores a
			// flexible parent's satisfied state, so leaving it unplaced
			// here never blocks a dependent from being scheduled.
		} else {
			remaining[t.ID] = t.DurationHours
		}
	}
	for _, t := range state.Tasks {
		if t.Flexible || placed[t.ID] {
			continue
		}
		if ready(t.ID) {
			enqueue(t.ID)
		}
	}

	start, err := cal.ProjectStartInstant()
	if err != nil {
		return Schedule{}, err
	}

	processDay := func(q *taskHeap, capDay float64, dayStart time.Time, stream Stream) {
		used := 0.0
		for used < capDay && q.Len() > 0 {
			item := heap.Pop(q).(queueItem)
			queued[item.id] = false

			avail := capDay - used
			need := remaining[item.id]
			consume := need
			if consume > avail {
				consume = avail
			}
			if consume <= 0 {
				continue
			}

			blockStart := dayStart.Add(time.Duration(used * float64(time.Hour)))
			blockEnd := dayStart.Add(time.Duration((used + consume) * float64(time.Hour)))
			blocks = append(blocks, Block{TaskID: item.id, Stream: stream, Start: blockStart, End: blockEnd, Hours: consume})

			remaining[item.id] -= consume
			used += consume

			if remaining[item.id] <= epsilon {
				complete(item.id)
			} else {
				queued[item.id] = true
				heap.Push(q, item)
			}
		}
	}

	// Flexible tasks are never enqueued or placed by this simulation, so
	// they're excluded from the total the leveler is waiting to reach.
	countPlaced := func() int {
		n := 0
		for _, t := range state.Tasks {
			if !t.Flexible && placed[t.ID] {
				n++
			}
		}
		return n
	}
	total := 0
	for _, t := range state.Tasks {
		if !t.Flexible {
			total++
		}
	}
	placedCount := countPlaced()

	date := start
	for day := 0; day < calendar.MaxHorizonDays && placedCount < total; day++ {
		dayStart := cal.DayStartInstant(date)
		capDay := cal.Capacity(date)

		if capDay > 0 {
			processDay(attended, capDay, dayStart, StreamAttended)
			processDay(background, capDay, dayStart, StreamBackground)
		}

		placedCount = countPlaced()

		date = date.AddDate(0, 0, 1)
	}

	if placedCount < total {
		return Schedule{}, dagerr.New(dagerr.UnschedulableHorizon,
			"could not place all tasks within %d days", calendar.MaxHorizonDays)
	}

	return Schedule{Blocks: blocks}, nil
}
