package board

import (
	"context"
	"fmt"
	"time"

	"github.com/korganrivera/kanban/internal/model"
	"github.com/korganrivera/kanban/internal/schedule"
	"github.com/korganrivera/kanban/internal/telemetry"
)

// AddDependency inserts the edge "id depends on dep". Self-edges are
// rejected outright; a reachability check runs before anything is touched,
// so an edge that would close a cycle leaves the collection unchanged.
func (e *Engine) AddDependency(ctx context.Context, id, dep model.TaskID) (*model.Task, error) {
	v, err := e.submit(ctx, "add dependency", func(b *model.Board, now time.Time) (any, error) {
		t, ok := b.Tasks[id]
		if !ok {
			return nil, wrapErr(ErrNotFound, "add dependency", string(id), nil)
		}
		if id == dep {
			return nil, wrapErr(ErrValidation, "add dependency", "task cannot depend on itself", nil)
		}
		if _, ok := b.Tasks[dep]; !ok {
			return nil, wrapErr(ErrValidation, "add dependency", fmt.Sprintf("dependency %s does not exist", dep), nil)
		}
		if t.DependsOnTask(dep) {
			return t.Clone(), nil
		}
		if schedule.WouldCycle(b.Tasks, id, dep) {
			return nil, wrapErr(ErrConflict, "add dependency",
				fmt.Sprintf("%s already depends on %s, edge would create a cycle", dep, id), nil)
		}

		t.AddDependency(dep)
		t.UpdatedAt = now
		t.Log(now, "dependency added", string(dep))
		return t.Clone(), nil
	})
	if err != nil {
		return nil, err
	}
	e.record(telemetry.EventDependencyAdded, telemetry.EventMetadata{
		"task_id":    string(id),
		"depends_on": string(dep),
	})
	return v.(*model.Task), nil
}

func (e *Engine) RemoveDependency(ctx context.Context, id, dep model.TaskID) (*model.Task, error) {
	v, err := e.submit(ctx, "remove dependency", func(b *model.Board, now time.Time) (any, error) {
		t, ok := b.Tasks[id]
		if !ok {
			return nil, wrapErr(ErrNotFound, "remove dependency", string(id), nil)
		}
		if !t.RemoveDependency(dep) {
			return nil, wrapErr(ErrValidation, "remove dependency",
				fmt.Sprintf("%s does not depend on %s", id, dep), nil)
		}
		t.UpdatedAt = now
		t.Log(now, "dependency removed", string(dep))
		if len(t.DependsOn) == 0 && t.State == model.StateSuspended {
			t.State = model.StateReady
			t.Log(now, "state changed", "ready (last dependency removed)")
		}
		return t.Clone(), nil
	})
	if err != nil {
		return nil, err
	}
	e.record(telemetry.EventDependencyRemoved, telemetry.EventMetadata{
		"task_id":    string(id),
		"depends_on": string(dep),
	})
	return v.(*model.Task), nil
}
