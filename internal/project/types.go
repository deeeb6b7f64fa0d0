package project

import (
	"encoding/json"
	"time"
)

// Status is a task's lifecycle state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// validTransition enforces forward-only lifecycle movement plus the
// explicit reset path back to not_started (spec §7 StatusTransition).
func validTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusNotStarted:
		return to == StatusInProgress || to == StatusDone
	case StatusInProgress:
		return to == StatusDone || to == StatusNotStarted
	case StatusDone:
		return to == StatusNotStarted
	}
	return false
}

// Task is one node of the project graph. DependsOn is stored as the wire
// format's []string of ids; Graph derives index-based adjacency from it on
// demand rather than this struct carrying back-edges.
type Task struct {
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
	Status        Status
	ActualStart   *time.Time
	ActualFinish  *time.Time

	// extra preserves JSON fields dagr doesn't know about, so a dagr.json
	// hand-edited or produced by a newer version round-trips without data
	// loss (spec §6: "unknown top-level task fields are preserved").
	extra map[string]json.RawMessage
}

// taskWire is the on-disk shape of Task; MarshalJSON/UnmarshalJSON move
// values between Task and taskWire by hand so extra can be merged in and
// split back out.
type taskWire struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	DurationHours float64         `json:"duration_hours"`
	DependsOn     []string        `json:"depends_on,omitempty"`
	Deadline      *Date           `json:"deadline,omitempty"`
	ProposedStart *Date           `json:"proposed_start,omitempty"`
	Background    bool            `json:"background,omitempty"`
	Flexible      bool            `json:"flexible,omitempty"`
	Project       string          `json:"project,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Status        Status          `json:"status"`
	ActualStart   *time.Time      `json:"actual_start,omitempty"`
	ActualFinish  *time.Time      `json:"actual_finish,omitempty"`
}

var taskKnownKeys = map[string]bool{
	"id": true, "name": true, "duration_hours": true, "depends_on": true,
	"deadline": true, "proposed_start": true, "background": true,
	"flexible": true, "project": true, "tags": true, "notes": true,
	"status": true, "actual_start": true, "actual_finish": true,
}

func (t Task) MarshalJSON() ([]byte, error) {
	w := taskWire{
		ID: t.ID, Name: t.Name, DurationHours: t.DurationHours,
		DependsOn: t.DependsOn, Deadline: t.Deadline, ProposedStart: t.ProposedStart,
		Background: t.Background, Flexible: t.Flexible, Project: t.Project,
		Tags: t.Tags, Notes: t.Notes, Status: t.Status,
		ActualStart: t.ActualStart, ActualFinish: t.ActualFinish,
	}
	base, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	if len(t.extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range t.extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var w taskWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	extra := make(map[string]json.RawMessage)
	for k, v := range raw {
		if !taskKnownKeys[k] {
			extra[k] = v
		}
	}

	*t = Task{
		ID: w.ID, Name: w.Name, DurationHours: w.DurationHours,
		DependsOn: w.DependsOn, Deadline: w.Deadline, ProposedStart: w.ProposedStart,
		Background: w.Background, Flexible: w.Flexible, Project: w.Project,
		Tags: w.Tags, Notes: w.Notes, Status: w.Status,
		ActualStart: w.ActualStart, ActualFinish: w.ActualFinish,
		extra: extra,
	}
	return nil
}

// Clone deep-copies a Task so apply()'s snapshot-and-rollback never shares
// backing arrays between the live state and a mutation-in-progress clone.
func (t Task) Clone() Task {
	c := t
	c.DependsOn = append([]string{}, t.DependsOn...)
	c.Tags = append([]string{}, t.Tags...)
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.ProposedStart != nil {
		d := *t.ProposedStart
		c.ProposedStart = &d
	}
	if t.ActualStart != nil {
		a := *t.ActualStart
		c.ActualStart = &a
	}
	if t.ActualFinish != nil {
		a := *t.ActualFinish
		c.ActualFinish = &a
	}
	c.extra = make(map[string]json.RawMessage, len(t.extra))
	for k, v := range t.extra {
		c.extra[k] = v
	}
	return c
}

// Configuration holds the scheduling-relevant project-wide settings, the
// persisted counterpart of calendar.Config.
type Configuration struct {
	StartDateTime     time.Time          `json:"start_datetime"`
	HoursPerDay       float64            `json:"hours_per_day"`
	DayStartTime      ClockTime          `json:"day_start_time"`
	SkipWeekends      bool               `json:"skip_weekends"`
	CapacityOverrides map[string]float64 `json:"capacity_overrides,omitempty"`
}

// DefaultConfiguration matches the teacher's DefaultConfig pattern: a
// reasonable working-day preset an `init` command can write out untouched.
func DefaultConfiguration(start time.Time) Configuration {
	dayStart, _ := ParseClockTime("09:00")
	return Configuration{
		StartDateTime: start,
		HoursPerDay:   8,
		DayStartTime:  dayStart,
		SkipWeekends:  true,
	}
}
