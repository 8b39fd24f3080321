package board

import (
	"context"
	"fmt"
	"time"

	"github.com/korganrivera/kanban/internal/model"
	"github.com/korganrivera/kanban/internal/schedule"
	"github.com/korganrivera/kanban/internal/telemetry"
)

// SetState transitions a task's stored state.
//
// Gates, in order: the target must be a known state; InProgress and Done
// require the task to be actionable, meaning effectively Ready or past due
// via the overdue escape hatch; Done additionally requires every dependency
// Done; InProgress, Blocked, and Suspended are subject to the WIP limits.
// A claim (transition to InProgress) records picker, pick time, and a
// points snapshot; a completion credits the ledger unless the task was
// effectively Blocked, then runs the recurrence advancer.
func (e *Engine) SetState(ctx context.Context, id model.TaskID, target model.State, actor string) (*model.Task, error) {
	v, err := e.submit(ctx, "set state", func(b *model.Board, now time.Time) (any, error) {
		t, ok := b.Tasks[id]
		if !ok {
			return nil, wrapErr(ErrNotFound, "set state", string(id), nil)
		}
		if !target.Valid() {
			return nil, wrapErr(ErrValidation, "set state", fmt.Sprintf("unknown state %q", target), nil)
		}
		if t.State == target {
			return t.Clone(), nil
		}

		d := schedule.Derive(t, b.Tasks, now)

		switch target {
		case model.StateInProgress:
			if !actionable(d) {
				return nil, wrapErr(ErrConflict, "set state",
					fmt.Sprintf("task is %s, not actionable yet", d.State), nil)
			}
			if err := checkWIP(b, target); err != nil {
				return nil, err
			}
			e.claim(t, actor, now)

		case model.StateDone:
			if open := openDependencies(t, b.Tasks); len(open) > 0 {
				return nil, wrapErr(ErrConflict, "set state",
					fmt.Sprintf("dependencies not done: %v", open), nil)
			}
			if !actionable(d) && d.State != model.StateInProgress && d.State != model.StateBlocked {
				return nil, wrapErr(ErrConflict, "set state",
					fmt.Sprintf("task is %s, not actionable yet", d.State), nil)
			}
			e.complete(t, d, actor, now)
			return t.Clone(), nil

		case model.StateBlocked, model.StateSuspended:
			if err := checkWIP(b, target); err != nil {
				return nil, err
			}

		case model.StateReady, model.StateWaiting:
			// Reopening a done task starts a fresh claim cycle.
			if t.State == model.StateDone {
				t.Picker = ""
				t.PickedAt = nil
				t.PointsSnapshot = 0
			}
		}

		t.State = target
		t.UpdatedAt = now
		t.Log(now, "state changed", string(target))
		return t.Clone(), nil
	})
	if err != nil {
		return nil, err
	}
	t := v.(*model.Task)
	e.record(telemetry.EventStateChanged, telemetry.EventMetadata{
		"task_id": string(id),
		"state":   string(target),
	})
	if target == model.StateDone {
		e.record(telemetry.EventTaskCompleted, telemetry.EventMetadata{"task_id": string(id)})
		// A completed task that is no longer stored Done was reopened by
		// its recurrence.
		if t.State != model.StateDone {
			e.record(telemetry.EventRecurrenceAdvanced, telemetry.EventMetadata{"task_id": string(id)})
		}
	}
	return t, nil
}

// actionable is the InProgress/Done gate: effectively Ready, or overdue.
// Overdue is the escape hatch that lets a slipped task be worked even
// while its timing or dependencies would otherwise hold it back.
func actionable(d schedule.Derived) bool {
	return d.State == model.StateReady || d.Overdue
}

func openDependencies(t *model.Task, all map[model.TaskID]*model.Task) []model.TaskID {
	var open []model.TaskID
	for _, dep := range t.DependsOn {
		if d, ok := all[dep]; ok && d.State != model.StateDone {
			open = append(open, dep)
		}
	}
	sortIDs(open)
	return open
}

func checkWIP(b *model.Board, target model.State) error {
	limit := b.WIPLimits[string(target)]
	if limit == nil {
		return nil
	}
	if b.CountByState()[target] >= *limit {
		return wrapErr(ErrConflict, "set state",
			fmt.Sprintf("wip limit for %s reached (%d)", target, *limit), nil)
	}
	return nil
}

func (e *Engine) claim(t *model.Task, actor string, now time.Time) {
	t.Picker = actor
	t.PickedAt = &now
	snapshot := t.Priority
	if snapshot < 1 {
		snapshot = 1
	}
	t.PointsSnapshot = snapshot
}

func (e *Engine) complete(t *model.Task, d schedule.Derived, actor string, now time.Time) {
	t.State = model.StateDone
	t.UpdatedAt = now
	t.Log(now, "completed", "")

	if e.ledger != nil && d.State != model.StateBlocked {
		user := t.Picker
		if user == "" {
			user = actor
		}
		points := t.PointsSnapshot
		if points < 1 {
			points = t.Priority
		}
		if points < 1 {
			points = 1
		}
		if user != "" {
			// A credit belongs to a completion that sticks. Stage it so
			// it only runs once the board save has gone through.
			id, title := t.ID, t.Title
			e.afterSave = append(e.afterSave, func() {
				if err := e.ledger.Credit(user, points, "completed: "+title); err != nil {
					// Points are bookkeeping; losing a credit must not
					// fail the completion.
					e.logger.Warn("ledger credit failed", "task", id, "user", user, "error", err)
				}
			})
		}
	}

	if schedule.Advance(t, now) {
		t.UpdatedAt = now
		t.Log(now, "recurrence advanced", fmt.Sprintf("next due %s", t.DueAt.Format(time.RFC3339)))
	}
}
