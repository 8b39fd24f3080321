// Package schedule holds the scheduling core: effective-state derivation,
// dependency graph analysis, priority scoring, and recurrence advancement.
// Everything in it is a pure function over the task collection and a
// timestamp; persistence and serialization live in internal/board.
package schedule

import (
	"time"

	"github.com/korganrivera/kanban/internal/model"
)

// Derived is the user-visible view of a task computed from its stored
// fields, the full collection, and wall-clock time. It is never persisted.
type Derived struct {
	State   model.State
	ReadyAt *time.Time
	DueAt   *time.Time
	Overdue bool
}

// Derive maps (task, collection, now) to the effective workflow state.
//
// Rule order is a deliberate business rule: terminal and sticky states
// short-circuit, timing dominates dependency status, and a manually set
// Suspended is a fallback. Do not reorder.
func Derive(t *model.Task, all map[model.TaskID]*model.Task, now time.Time) Derived {
	d := Derived{DueAt: t.DueAt}

	if t.DueAt != nil {
		readyAt := t.DueAt.AddDate(0, 0, -t.LeadTimeDays)
		d.ReadyAt = &readyAt
	}
	d.Overdue = overdue(t, now)

	switch {
	case t.State == model.StateDone:
		d.State = model.StateDone
		d.Overdue = false
	case t.State == model.StateBlocked:
		d.State = model.StateBlocked
	case t.State == model.StateInProgress:
		d.State = model.StateInProgress
	case t.Recurrence != nil && t.Recurrence.Paused:
		d.State = model.StateSuspended
	case d.ReadyAt != nil && now.Before(*d.ReadyAt):
		d.State = model.StateWaiting
		d.Overdue = false
	case hasOpenDependency(t, all):
		d.State = model.StateSuspended
	case t.DueAt == nil:
		d.State = t.State
		if d.State == "" {
			d.State = model.StateReady
		}
	case t.State == model.StateSuspended:
		d.State = model.StateSuspended
	default:
		d.State = model.StateReady
	}
	return d
}

// overdue is lenient for recurring tasks: a task on an interval only counts
// as overdue once half the interval has passed beyond the due date.
func overdue(t *model.Task, now time.Time) bool {
	if t.DueAt == nil {
		return false
	}
	threshold := *t.DueAt
	if t.Recurrence != nil && t.Recurrence.IntervalDays > 0 {
		threshold = threshold.Add(time.Duration(t.Recurrence.IntervalDays) * 12 * time.Hour)
	}
	return !now.Before(threshold)
}

// hasOpenDependency reports whether any dependency is not yet Done.
// Dangling ids are ignored; deletion strips them, so one here is stale.
func hasOpenDependency(t *model.Task, all map[model.TaskID]*model.Task) bool {
	for _, id := range t.DependsOn {
		dep, ok := all[id]
		if !ok {
			continue
		}
		if dep.State != model.StateDone {
			return true
		}
	}
	return false
}
