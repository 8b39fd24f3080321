package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korganrivera/kanban/internal/model"
)

func tp(t time.Time) *time.Time { return &t }

func testNow() time.Time {
	return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
}

func TestDerive_DoneIsTerminal(t *testing.T) {
	now := testNow()
	due := now.AddDate(0, 0, -10)
	tk := &model.Task{ID: "a", State: model.StateDone, DueAt: tp(due)}

	d := Derive(tk, map[model.TaskID]*model.Task{"a": tk}, now)

	assert.Equal(t, model.StateDone, d.State)
	// Done never reports overdue, even long past due.
	assert.False(t, d.Overdue)
}

func TestDerive_BlockedAndInProgressCarryOverdue(t *testing.T) {
	now := testNow()
	due := now.AddDate(0, 0, -1)

	for _, st := range []model.State{model.StateBlocked, model.StateInProgress} {
		tk := &model.Task{ID: "a", State: st, DueAt: tp(due)}
		d := Derive(tk, map[model.TaskID]*model.Task{"a": tk}, now)
		assert.Equal(t, st, d.State)
		assert.True(t, d.Overdue)
	}
}

func TestDerive_PausedRecurrenceSuspends(t *testing.T) {
	now := testNow()
	tk := &model.Task{
		ID:         "a",
		State:      model.StateReady,
		Recurrence: &model.Recurrence{Type: model.RecurrenceRolling, IntervalDays: 7, Paused: true},
	}

	d := Derive(tk, map[model.TaskID]*model.Task{"a": tk}, now)
	assert.Equal(t, model.StateSuspended, d.State)
}

func TestDerive_FutureReadyAtWaits(t *testing.T) {
	now := testNow()
	due := now.AddDate(0, 0, 5)
	tk := &model.Task{ID: "a", State: model.StateReady, DueAt: tp(due), LeadTimeDays: 2}

	d := Derive(tk, map[model.TaskID]*model.Task{"a": tk}, now)

	assert.Equal(t, model.StateWaiting, d.State)
	require.NotNil(t, d.ReadyAt)
	assert.Equal(t, due.AddDate(0, 0, -2), *d.ReadyAt)
	// Waiting forces overdue false regardless of timing math.
	assert.False(t, d.Overdue)
}

func TestDerive_LeadTimeElapsedIsReady(t *testing.T) {
	now := testNow()
	due := now.AddDate(0, 0, 1)
	tk := &model.Task{ID: "a", State: model.StateReady, DueAt: tp(due), LeadTimeDays: 3}

	d := Derive(tk, map[model.TaskID]*model.Task{"a": tk}, now)
	assert.Equal(t, model.StateReady, d.State)
}

func TestDerive_TimingBeatsDependencies(t *testing.T) {
	// A future ready-at wins over an open dependency; the rule order is a
	// business decision, not an accident.
	now := testNow()
	due := now.AddDate(0, 0, 10)
	dep := &model.Task{ID: "dep", State: model.StateReady}
	tk := &model.Task{ID: "a", State: model.StateReady, DueAt: tp(due), DependsOn: []model.TaskID{"dep"}}
	all := map[model.TaskID]*model.Task{"a": tk, "dep": dep}

	d := Derive(tk, all, now)
	assert.Equal(t, model.StateWaiting, d.State)
}

func TestDerive_OpenDependencySuspends(t *testing.T) {
	now := testNow()
	dep := &model.Task{ID: "dep", State: model.StateInProgress}
	tk := &model.Task{ID: "a", State: model.StateReady, DependsOn: []model.TaskID{"dep"}}
	all := map[model.TaskID]*model.Task{"a": tk, "dep": dep}

	d := Derive(tk, all, now)
	assert.Equal(t, model.StateSuspended, d.State)

	dep.State = model.StateDone
	d = Derive(tk, all, now)
	assert.Equal(t, model.StateReady, d.State)
}

func TestDerive_DanglingDependencyIgnored(t *testing.T) {
	now := testNow()
	tk := &model.Task{ID: "a", State: model.StateReady, DependsOn: []model.TaskID{"gone"}}

	d := Derive(tk, map[model.TaskID]*model.Task{"a": tk}, now)
	assert.Equal(t, model.StateReady, d.State)
}

func TestDerive_NoDueDateFallsBackToStoredState(t *testing.T) {
	now := testNow()
	tk := &model.Task{ID: "a", State: model.StateSuspended}

	d := Derive(tk, map[model.TaskID]*model.Task{"a": tk}, now)
	assert.Equal(t, model.StateSuspended, d.State)

	tk.State = ""
	d = Derive(tk, map[model.TaskID]*model.Task{"a": tk}, now)
	assert.Equal(t, model.StateReady, d.State)
}

func TestDerive_OverdueThresholds(t *testing.T) {
	now := testNow()

	plain := &model.Task{ID: "a", State: model.StateReady, DueAt: tp(now.Add(-time.Minute))}
	d := Derive(plain, map[model.TaskID]*model.Task{"a": plain}, now)
	assert.True(t, d.Overdue)

	// A 4-day interval gets 2 days of grace past the due date.
	rec := &model.Recurrence{Type: model.RecurrenceRolling, IntervalDays: 4}
	recurring := &model.Task{ID: "b", State: model.StateReady, DueAt: tp(now.AddDate(0, 0, -1)), Recurrence: rec}
	d = Derive(recurring, map[model.TaskID]*model.Task{"b": recurring}, now)
	assert.False(t, d.Overdue)

	recurring.DueAt = tp(now.AddDate(0, 0, -2))
	d = Derive(recurring, map[model.TaskID]*model.Task{"b": recurring}, now)
	assert.True(t, d.Overdue)

	noDue := &model.Task{ID: "c", State: model.StateReady}
	d = Derive(noDue, map[model.TaskID]*model.Task{"c": noDue}, now)
	assert.False(t, d.Overdue)
}

func TestDerive_StateAlwaysValid(t *testing.T) {
	now := testNow()
	tasks := map[model.TaskID]*model.Task{
		"a": {ID: "a", State: model.StateReady, DueAt: tp(now.AddDate(0, 0, 3)), LeadTimeDays: 1},
		"b": {ID: "b", State: model.StateDone},
		"c": {ID: "c", State: model.StateWaiting, DependsOn: []model.TaskID{"a"}},
		"d": {ID: "d"},
	}
	for _, tk := range tasks {
		d := Derive(tk, tasks, now)
		assert.True(t, d.State.Valid(), "task %s derived invalid state %q", tk.ID, d.State)
	}
}
