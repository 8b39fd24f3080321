package board

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korganrivera/kanban/internal/model"
)

func TestCreateTask_DefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task := env.mustCreate(t, CreateRequest{Title: "  plain  "})
	assert.Equal(t, "plain", task.Title)
	assert.Equal(t, model.StateReady, task.State)
	require.Len(t, task.History, 1)
	assert.Equal(t, "created", task.History[0].Event)

	_, err := env.engine.CreateTask(ctx, CreateRequest{Title: "x", DependsOn: []model.TaskID{"task_404"}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.engine.CreateTask(ctx, CreateRequest{
		Title:      "x",
		Recurrence: &model.Recurrence{Type: "yearly"},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.engine.CreateTask(ctx, CreateRequest{
		Title:      "x",
		Recurrence: &model.Recurrence{Type: model.RecurrenceAnchored, Weekdays: []int{7}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateTask_FutureDueDateDerivesWaiting(t *testing.T) {
	env := newTestEnv(t)

	due := env.clock.Now().AddDate(0, 0, 5)
	task := env.mustCreate(t, CreateRequest{Title: "later", DueAt: &due})
	assert.Equal(t, model.StateReady, task.State)

	views, err := env.engine.Snapshot()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, model.StateWaiting, views[0].EffectiveState)
}

func TestEditTask_PatchSemantics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	due := env.clock.Now().AddDate(0, 0, 3)
	task := env.mustCreate(t, CreateRequest{Title: "before", DueAt: &due})

	title := "after"
	var cleared *time.Time
	got, err := env.engine.EditTask(ctx, task.ID, Patch{
		Title: &title,
		DueAt: &cleared, // explicit clear
	})
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Nil(t, got.DueAt)

	// Untouched fields stay put.
	assert.Equal(t, task.CreatedAt, got.CreatedAt)

	_, err = env.engine.EditTask(ctx, "task_404", Patch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddDependency_RejectsSelfAndCycles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.mustCreate(t, CreateRequest{Title: "a"})
	b := env.mustCreate(t, CreateRequest{Title: "b"})
	c := env.mustCreate(t, CreateRequest{Title: "c"})

	_, err := env.engine.AddDependency(ctx, a.ID, a.ID)
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.engine.AddDependency(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = env.engine.AddDependency(ctx, c.ID, b.ID)
	require.NoError(t, err)

	// a -> c would close the loop; the collection must stay untouched.
	_, err = env.engine.AddDependency(ctx, a.ID, c.ID)
	require.ErrorIs(t, err, ErrConflict)

	views, err := env.engine.Snapshot()
	require.NoError(t, err)
	for _, v := range views {
		if v.ID == a.ID {
			assert.Empty(t, v.DependsOn)
		}
		assert.False(t, v.Deadlock)
	}

	_, err = env.engine.AddDependency(ctx, a.ID, "task_404")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveDependency_LastRemovalUnsuspends(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dep := env.mustCreate(t, CreateRequest{Title: "dep"})
	task := env.mustCreate(t, CreateRequest{Title: "main", DependsOn: []model.TaskID{dep.ID}})

	_, err := env.engine.SetState(ctx, task.ID, model.StateSuspended, "sam")
	require.NoError(t, err)

	got, err := env.engine.RemoveDependency(ctx, task.ID, dep.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DependsOn)
	assert.Equal(t, model.StateReady, got.State)

	_, err = env.engine.RemoveDependency(ctx, task.ID, dep.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteTask_ExternalDependentsNeedConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	x := env.mustCreate(t, CreateRequest{Title: "x"})
	y := env.mustCreate(t, CreateRequest{Title: "y", DependsOn: []model.TaskID{x.ID}})

	_, err := env.engine.DeleteTask(ctx, x.ID, false)
	require.ErrorIs(t, err, ErrConflict)
	var conflict *DeleteConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []model.TaskID{y.ID}, conflict.Dependents)

	// Nothing was touched by the rejection.
	views, err := env.engine.Snapshot()
	require.NoError(t, err)
	assert.Len(t, views, 2)

	res, err := env.engine.DeleteTask(ctx, x.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []model.TaskID{x.ID}, res.Deleted)
	assert.Equal(t, []model.TaskID{y.ID}, res.Stripped)

	views, err = env.engine.Snapshot()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, y.ID, views[0].ID)
	assert.Empty(t, views[0].DependsOn)
}

func TestDeleteTask_RemovesExclusiveClosureOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// target -> exclusive -> shared, with outsider -> shared.
	shared := env.mustCreate(t, CreateRequest{Title: "shared"})
	exclusive := env.mustCreate(t, CreateRequest{Title: "exclusive", DependsOn: []model.TaskID{shared.ID}})
	target := env.mustCreate(t, CreateRequest{Title: "target", DependsOn: []model.TaskID{exclusive.ID}})
	outsider := env.mustCreate(t, CreateRequest{Title: "outsider", DependsOn: []model.TaskID{shared.ID}})

	res, err := env.engine.DeleteTask(ctx, target.ID, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []model.TaskID{target.ID, exclusive.ID}, res.Deleted)
	assert.Equal(t, []model.TaskID{shared.ID}, res.Kept)

	views, err := env.engine.Snapshot()
	require.NoError(t, err)
	ids := make(map[model.TaskID]bool, len(views))
	for _, v := range views {
		ids[v.ID] = true
	}
	assert.True(t, ids[shared.ID])
	assert.True(t, ids[outsider.ID])
	assert.False(t, ids[target.ID])
	assert.False(t, ids[exclusive.ID])
}

func TestDeleteTask_UnknownTask(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.DeleteTask(context.Background(), "task_404", false)
	assert.ErrorIs(t, err, ErrNotFound)
}
