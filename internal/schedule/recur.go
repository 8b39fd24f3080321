package schedule

import (
	"slices"
	"time"

	"github.com/korganrivera/kanban/internal/model"
)

// weekday scan bound: two full weeks from the completion date.
const anchoredScanDays = 14

// Advance applies the task's recurrence policy after a completion and
// reports whether the task was reopened. It mutates the task in place;
// a task with no recurrence, or a paused one, stays Done.
//
// Policies:
//   - rolling: due date moves to completion time + interval.
//   - anchored with weekdays: the next date on an allowed weekday,
//     preserving the original time-of-day. The scan is bounded; if no
//     weekday matches within anchoredScanDays the task stays Done
//     permanently. That is the intended behavior for a malformed weekday
//     set, not an error.
//   - anchored with interval: due date moves from the previous due date,
//     keeping phase alignment across repeated completions.
func Advance(t *model.Task, completedAt time.Time) bool {
	r := t.Recurrence
	if r == nil || r.Paused {
		return false
	}

	switch r.Type {
	case model.RecurrenceRolling:
		if r.IntervalDays <= 0 {
			return false
		}
		next := completedAt.AddDate(0, 0, r.IntervalDays)
		reopen(t, next)
		return true

	case model.RecurrenceAnchored:
		if len(r.Weekdays) > 0 {
			return advanceAnchoredWeekday(t, completedAt)
		}
		if r.IntervalDays > 0 {
			base := completedAt
			if t.DueAt != nil {
				base = *t.DueAt
			}
			reopen(t, base.AddDate(0, 0, r.IntervalDays))
			return true
		}
	}
	return false
}

func advanceAnchoredWeekday(t *model.Task, completedAt time.Time) bool {
	// Keep the original time-of-day; only the date advances.
	anchor := completedAt
	if t.DueAt != nil {
		anchor = *t.DueAt
	}
	hour, minute, sec := anchor.Clock()

	for d := 1; d <= anchoredScanDays; d++ {
		day := completedAt.AddDate(0, 0, d)
		if !slices.Contains(t.Recurrence.Weekdays, int(day.Weekday())) {
			continue
		}
		next := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, sec, 0, day.Location())
		reopen(t, next)
		return true
	}
	return false
}

func reopen(t *model.Task, nextDue time.Time) {
	t.DueAt = &nextDue
	t.State = model.StateReady
	t.Picker = ""
	t.PickedAt = nil
	t.PointsSnapshot = 0
	// The recurrence can carry its own lead window for reopened cycles.
	if r := t.Recurrence; r != nil && r.LeadTimeDays > 0 {
		t.LeadTimeDays = r.LeadTimeDays
	}
}
