package model

import (
	"slices"
	"time"
)

type TaskID string

// State is the stored workflow state of a task. The user-visible state is
// derived from it together with timing and dependency facts; see
// internal/schedule.
type State string

const (
	StateWaiting    State = "waiting"
	StateReady      State = "ready"
	StateInProgress State = "in_progress"
	StateBlocked    State = "blocked"
	StateSuspended  State = "suspended"
	StateDone       State = "done"
)

func (s State) Valid() bool {
	switch s {
	case StateWaiting, StateReady, StateInProgress, StateBlocked, StateSuspended, StateDone:
		return true
	}
	return false
}

const (
	RecurrenceRolling  = "rolling"
	RecurrenceAnchored = "anchored"
)

// Recurrence describes how a task reschedules itself after completion.
type Recurrence struct {
	Type         string `json:"type"`
	IntervalDays int    `json:"intervalDays,omitempty"`
	Weekdays     []int  `json:"weekdays,omitempty"` // 0=Sunday .. 6=Saturday
	LeadTimeDays int    `json:"leadTimeDays,omitempty"`
	Paused       bool   `json:"paused,omitempty"`
}

type HistoryEntry struct {
	At     time.Time `json:"at"`
	Event  string    `json:"event"`
	Detail string    `json:"detail,omitempty"`
}

type Task struct {
	ID          TaskID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	State       State  `json:"state"`

	DueAt        *time.Time  `json:"dueAt,omitempty"`
	LeadTimeDays int         `json:"leadTimeDays,omitempty"`
	Deadline     *time.Time  `json:"deadline,omitempty"`
	DependsOn    []TaskID    `json:"dependsOn,omitempty"`
	Recurrence   *Recurrence `json:"recurrence,omitempty"`
	RemedyFor    TaskID      `json:"remedyFor,omitempty"`

	Picker         string     `json:"picker,omitempty"`
	PickedAt       *time.Time `json:"pickedAt,omitempty"`
	PointsSnapshot int        `json:"pointsSnapshot,omitempty"`

	History []HistoryEntry `json:"history,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Derived fields, recomputed by the engine on every mutation.
	// Never hand-edited.
	ImportanceRaw float64 `json:"importanceRaw"`
	ImportancePct int     `json:"importancePercentile"`
	Urgency       int     `json:"urgency"`
	Priority      int     `json:"priority"`
	Deadlock      bool    `json:"deadlock"`
}

func (t *Task) DependsOnTask(id TaskID) bool {
	return slices.Contains(t.DependsOn, id)
}

func (t *Task) AddDependency(id TaskID) {
	if id == "" || t.DependsOnTask(id) {
		return
	}
	t.DependsOn = append(t.DependsOn, id)
}

func (t *Task) RemoveDependency(id TaskID) bool {
	out := t.DependsOn[:0]
	removed := false
	for _, d := range t.DependsOn {
		if d == id {
			removed = true
			continue
		}
		out = append(out, d)
	}
	t.DependsOn = out
	return removed
}

func (t *Task) Log(at time.Time, event, detail string) {
	t.History = append(t.History, HistoryEntry{At: at, Event: event, Detail: detail})
}

// Clone returns a deep copy safe to hand to readers.
func (t *Task) Clone() *Task {
	cp := *t
	cp.DependsOn = slices.Clone(t.DependsOn)
	cp.History = slices.Clone(t.History)
	if t.Recurrence != nil {
		r := *t.Recurrence
		r.Weekdays = slices.Clone(t.Recurrence.Weekdays)
		cp.Recurrence = &r
	}
	if t.DueAt != nil {
		d := *t.DueAt
		cp.DueAt = &d
	}
	if t.Deadline != nil {
		d := *t.Deadline
		cp.Deadline = &d
	}
	if t.PickedAt != nil {
		d := *t.PickedAt
		cp.PickedAt = &d
	}
	return &cp
}
