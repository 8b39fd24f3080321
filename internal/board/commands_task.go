package board

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/korganrivera/kanban/internal/model"
	"github.com/korganrivera/kanban/internal/schedule"
	"github.com/korganrivera/kanban/internal/telemetry"
)

// CreateRequest carries the caller-settable fields of a new task.
type CreateRequest struct {
	Title        string
	Description  string
	DueAt        *time.Time
	LeadTimeDays int
	Deadline     *time.Time
	DependsOn    []model.TaskID
	Recurrence   *model.Recurrence
	RemedyFor    model.TaskID
}

// CreateTask adds a task with stored state Ready. A future due date makes
// it effective-Waiting purely through derivation.
func (e *Engine) CreateTask(ctx context.Context, req CreateRequest) (*model.Task, error) {
	v, err := e.submit(ctx, "create task", func(b *model.Board, now time.Time) (any, error) {
		if strings.TrimSpace(req.Title) == "" {
			return nil, wrapErr(ErrValidation, "create task", "title is required", nil)
		}
		if req.LeadTimeDays < 0 {
			return nil, wrapErr(ErrValidation, "create task", "lead time must not be negative", nil)
		}
		if err := validateRecurrence(req.Recurrence); err != nil {
			return nil, err
		}
		for _, dep := range req.DependsOn {
			if _, ok := b.Tasks[dep]; !ok {
				return nil, wrapErr(ErrValidation, "create task", fmt.Sprintf("dependency %s does not exist", dep), nil)
			}
		}
		if req.RemedyFor != "" {
			if _, ok := b.Tasks[req.RemedyFor]; !ok {
				return nil, wrapErr(ErrValidation, "create task", fmt.Sprintf("remedy target %s does not exist", req.RemedyFor), nil)
			}
		}

		t := &model.Task{
			ID:           e.ids.NewTaskID(),
			Title:        strings.TrimSpace(req.Title),
			Description:  req.Description,
			State:        model.StateReady,
			DueAt:        req.DueAt,
			LeadTimeDays: req.LeadTimeDays,
			Deadline:     req.Deadline,
			Recurrence:   req.Recurrence,
			RemedyFor:    req.RemedyFor,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		for _, dep := range dedupe(req.DependsOn) {
			t.AddDependency(dep)
		}
		t.Log(now, "created", "")

		b.Tasks[t.ID] = t
		return t.Clone(), nil
	})
	if err != nil {
		return nil, err
	}
	t := v.(*model.Task)
	e.record(telemetry.EventTaskCreated, telemetry.EventMetadata{"task_id": string(t.ID)})
	return t, nil
}

// Patch is a partial update. A nil pointer means "no change"; the
// double-pointer fields distinguish "clear" (*p == nil) from "no change".
type Patch struct {
	Title        *string
	Description  *string
	DueAt        **time.Time
	LeadTimeDays *int
	Deadline     **time.Time
	Recurrence   **model.Recurrence
	RemedyFor    *model.TaskID
}

func (e *Engine) EditTask(ctx context.Context, id model.TaskID, p Patch) (*model.Task, error) {
	v, err := e.submit(ctx, "edit task", func(b *model.Board, now time.Time) (any, error) {
		t, ok := b.Tasks[id]
		if !ok {
			return nil, wrapErr(ErrNotFound, "edit task", string(id), nil)
		}

		if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
			return nil, wrapErr(ErrValidation, "edit task", "title must not be empty", nil)
		}
		if p.LeadTimeDays != nil && *p.LeadTimeDays < 0 {
			return nil, wrapErr(ErrValidation, "edit task", "lead time must not be negative", nil)
		}
		if p.Recurrence != nil && *p.Recurrence != nil {
			if err := validateRecurrence(*p.Recurrence); err != nil {
				return nil, err
			}
		}
		if p.RemedyFor != nil && *p.RemedyFor != "" {
			if _, ok := b.Tasks[*p.RemedyFor]; !ok {
				return nil, wrapErr(ErrValidation, "edit task", fmt.Sprintf("remedy target %s does not exist", *p.RemedyFor), nil)
			}
			if *p.RemedyFor == id {
				return nil, wrapErr(ErrValidation, "edit task", "task cannot remedy itself", nil)
			}
		}

		if p.Title != nil {
			t.Title = strings.TrimSpace(*p.Title)
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.DueAt != nil {
			t.DueAt = *p.DueAt
		}
		if p.LeadTimeDays != nil {
			t.LeadTimeDays = *p.LeadTimeDays
		}
		if p.Deadline != nil {
			t.Deadline = *p.Deadline
		}
		if p.Recurrence != nil {
			t.Recurrence = *p.Recurrence
		}
		if p.RemedyFor != nil {
			t.RemedyFor = *p.RemedyFor
		}
		t.UpdatedAt = now
		t.Log(now, "edited", "")
		return t.Clone(), nil
	})
	if err != nil {
		return nil, err
	}
	e.record(telemetry.EventTaskEdited, telemetry.EventMetadata{"task_id": string(id)})
	return v.(*model.Task), nil
}

// DeleteResult reports what a delete actually did.
type DeleteResult struct {
	Deleted  []model.TaskID // closure members removed
	Kept     []model.TaskID // closure members protected by outside references
	Stripped []model.TaskID // survivors whose dependency lists were cleaned
}

// DeleteTask removes a task together with the dependencies it exclusively
// owns (its dependency closure minus members still referenced from outside
// the closure). Tasks outside the closure that depend on the target make
// the delete a conflict unless confirm is set; their references to deleted
// ids are stripped, and a task whose last dependency disappears while
// stored-Suspended is reset to Ready.
func (e *Engine) DeleteTask(ctx context.Context, id model.TaskID, confirm bool) (DeleteResult, error) {
	v, err := e.submit(ctx, "delete task", func(b *model.Board, now time.Time) (any, error) {
		if _, ok := b.Tasks[id]; !ok {
			return nil, wrapErr(ErrNotFound, "delete task", string(id), nil)
		}

		closure := schedule.Closure(b.Tasks, id)

		var externalDependents []model.TaskID
		for _, other := range b.Tasks {
			if closure[other.ID] {
				continue
			}
			if other.DependsOnTask(id) {
				externalDependents = append(externalDependents, other.ID)
			}
		}
		sortIDs(externalDependents)
		if len(externalDependents) > 0 && !confirm {
			return nil, &DeleteConflictError{TaskID: id, Dependents: externalDependents}
		}

		// Closure members other than the target survive if anything
		// outside the closure still needs them.
		protected := map[model.TaskID]bool{}
		for _, other := range b.Tasks {
			if closure[other.ID] {
				continue
			}
			for member := range closure {
				if member != id && other.DependsOnTask(member) {
					protected[member] = true
				}
			}
		}

		res := DeleteResult{}
		deleted := map[model.TaskID]bool{}
		for member := range closure {
			if protected[member] {
				res.Kept = append(res.Kept, member)
				continue
			}
			delete(b.Tasks, member)
			deleted[member] = true
			res.Deleted = append(res.Deleted, member)
		}

		for _, survivor := range b.Tasks {
			stripped := false
			for _, dep := range append([]model.TaskID(nil), survivor.DependsOn...) {
				if deleted[dep] {
					survivor.RemoveDependency(dep)
					stripped = true
				}
			}
			if survivor.RemedyFor != "" && deleted[survivor.RemedyFor] {
				survivor.RemedyFor = ""
			}
			if !stripped {
				continue
			}
			res.Stripped = append(res.Stripped, survivor.ID)
			survivor.UpdatedAt = now
			survivor.Log(now, "dependency removed", fmt.Sprintf("dependency of %s deleted", id))
			// Losing the last blocking dependency un-suspends the task.
			if len(survivor.DependsOn) == 0 && survivor.State == model.StateSuspended {
				survivor.State = model.StateReady
				survivor.Log(now, "state changed", "ready (last dependency deleted)")
			}
		}

		sortIDs(res.Deleted)
		sortIDs(res.Kept)
		sortIDs(res.Stripped)
		return res, nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	res := v.(DeleteResult)
	e.record(telemetry.EventTaskDeleted, telemetry.EventMetadata{
		"task_id": string(id),
		"deleted": len(res.Deleted),
	})
	return res, nil
}

// SetWIPLimit updates one entry of the limit map through the queue.
// A nil limit removes the cap.
func (e *Engine) SetWIPLimit(ctx context.Context, state model.State, limit *int) error {
	_, err := e.submit(ctx, "set wip limit", func(b *model.Board, now time.Time) (any, error) {
		switch state {
		case model.StateInProgress, model.StateBlocked, model.StateSuspended:
		default:
			return nil, wrapErr(ErrValidation, "set wip limit", fmt.Sprintf("state %s cannot be limited", state), nil)
		}
		if limit != nil && *limit < 0 {
			return nil, wrapErr(ErrValidation, "set wip limit", "limit must not be negative", nil)
		}
		if limit == nil {
			delete(b.WIPLimits, string(state))
		} else {
			n := *limit
			b.WIPLimits[string(state)] = &n
		}
		return nil, nil
	})
	return err
}

func validateRecurrence(r *model.Recurrence) error {
	if r == nil {
		return nil
	}
	switch r.Type {
	case model.RecurrenceRolling, model.RecurrenceAnchored:
	default:
		return wrapErr(ErrValidation, "recurrence", fmt.Sprintf("unknown type %q", r.Type), nil)
	}
	if r.IntervalDays < 0 {
		return wrapErr(ErrValidation, "recurrence", "interval must not be negative", nil)
	}
	for _, wd := range r.Weekdays {
		if wd < 0 || wd > 6 {
			return wrapErr(ErrValidation, "recurrence", fmt.Sprintf("weekday %d out of range", wd), nil)
		}
	}
	if r.Type == model.RecurrenceRolling && r.IntervalDays == 0 {
		return wrapErr(ErrValidation, "recurrence", "rolling recurrence needs an interval", nil)
	}
	if r.Type == model.RecurrenceAnchored && r.IntervalDays == 0 && len(r.Weekdays) == 0 {
		return wrapErr(ErrValidation, "recurrence", "anchored recurrence needs an interval or weekdays", nil)
	}
	return nil
}

func dedupe(ids []model.TaskID) []model.TaskID {
	seen := make(map[model.TaskID]bool, len(ids))
	out := make([]model.TaskID, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func sortIDs(ids []model.TaskID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
