package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korganrivera/kanban/internal/model"
)

func TestUrgency_DeadlineRamp(t *testing.T) {
	now := testNow()
	cfg := DefaultConfig()

	// 5 days out of a 30-day window: round(100·(1-5/30)) = 83.
	tk := &model.Task{ID: "a", Deadline: tp(now.AddDate(0, 0, 5))}
	assert.Equal(t, 83, Urgency(tk, now, cfg))

	tk.Deadline = tp(now)
	assert.Equal(t, 100, Urgency(tk, now, cfg))

	tk.Deadline = tp(now.AddDate(0, 0, -3))
	assert.Equal(t, 100, Urgency(tk, now, cfg))

	tk.Deadline = tp(now.AddDate(0, 0, 45))
	assert.Equal(t, 0, Urgency(tk, now, cfg))
}

func TestUrgency_DeadlineDominatesDueDate(t *testing.T) {
	now := testNow()
	cfg := DefaultConfig()
	tk := &model.Task{
		ID:       "a",
		Deadline: tp(now.AddDate(0, 0, 15)),
		DueAt:    tp(now), // due now would be 100 on its own
	}
	assert.Equal(t, 50, Urgency(tk, now, cfg))
}

func TestUrgency_RollingRecurrenceUsesInterval(t *testing.T) {
	now := testNow()
	cfg := DefaultConfig()

	// Halfway through a 7-day interval.
	tk := &model.Task{
		ID:         "a",
		DueAt:      tp(now.Add(84 * time.Hour)),
		Recurrence: &model.Recurrence{Type: model.RecurrenceRolling, IntervalDays: 7},
	}
	assert.Equal(t, 50, Urgency(tk, now, cfg))

	// Anchored recurrence falls back to the window ramp.
	tk.Recurrence.Type = model.RecurrenceAnchored
	assert.Equal(t, 88, Urgency(tk, now, cfg)) // round(100·(1-3.5/30))
}

func TestUrgency_NoTimingIsZero(t *testing.T) {
	tk := &model.Task{ID: "a"}
	assert.Equal(t, 0, Urgency(tk, testNow(), DefaultConfig()))
}

func TestScoreAll_ImportancePropagation(t *testing.T) {
	now := testNow()
	cfg := DefaultConfig()

	// c depends on b depends on a: a carries its chain of dependents.
	tasks := graphTasks(map[model.TaskID][]model.TaskID{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
	})

	scores := ScoreAll(tasks, now, cfg)

	assert.Equal(t, 0.0, scores["c"].ImportanceRaw)
	assert.Equal(t, 1.0, scores["b"].ImportanceRaw) // 1 + 0.5·0
	assert.Equal(t, 1.5, scores["a"].ImportanceRaw) // 1 + 0.5·1
	assert.Equal(t, 100, scores["a"].ImportancePct) // 2 of 2 smaller
	assert.Equal(t, 50, scores["b"].ImportancePct)  // 1 of 2 smaller
	assert.Equal(t, 0, scores["c"].ImportancePct)
}

func TestScoreAll_PercentileMonotonicInRawImportance(t *testing.T) {
	now := testNow()
	tasks := graphTasks(map[model.TaskID][]model.TaskID{})
	for i := 0; i < 8; i++ {
		id := model.TaskID(fmt.Sprintf("t%d", i))
		tasks[id] = &model.Task{ID: id, State: model.StateReady}
	}
	// Fan-in: every task except t0 depends on t0; t1 also picks up t2..t4.
	for i := 1; i < 8; i++ {
		tasks[model.TaskID(fmt.Sprintf("t%d", i))].DependsOn = []model.TaskID{"t0"}
	}
	tasks["t2"].DependsOn = append(tasks["t2"].DependsOn, "t1")
	tasks["t3"].DependsOn = append(tasks["t3"].DependsOn, "t1")

	scores := ScoreAll(tasks, now, DefaultConfig())
	for a, sa := range scores {
		for b, sb := range scores {
			if sa.ImportanceRaw < sb.ImportanceRaw {
				assert.LessOrEqual(t, sa.ImportancePct, sb.ImportancePct,
					"%s raw=%v pct=%d vs %s raw=%v pct=%d",
					a, sa.ImportanceRaw, sa.ImportancePct, b, sb.ImportanceRaw, sb.ImportancePct)
			}
		}
	}
}

func TestScoreAll_SingletonPopulationScoresZeroPercentile(t *testing.T) {
	tasks := graphTasks(map[model.TaskID][]model.TaskID{"a": nil})
	scores := ScoreAll(tasks, testNow(), DefaultConfig())
	assert.Equal(t, 0, scores["a"].ImportancePct)
	assert.Equal(t, 1, scores["a"].Priority)
}

func TestScoreAll_DeadlockedForcedToZero(t *testing.T) {
	tasks := graphTasks(map[model.TaskID][]model.TaskID{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	})

	scores := ScoreAll(tasks, testNow(), DefaultConfig())
	for id, s := range scores {
		assert.True(t, s.Deadlock, "task %s", id)
		assert.Equal(t, 0.0, s.ImportanceRaw, "task %s", id)
	}
}

func TestScoreAll_BoundsHold(t *testing.T) {
	now := testNow()
	tasks := graphTasks(map[model.TaskID][]model.TaskID{
		"a": nil,
		"b": {"a"},
		"c": {"a", "b"},
		"d": {"c"},
		"e": nil,
	})
	tasks["a"].Deadline = tp(now.AddDate(0, 0, -2))
	tasks["b"].DueAt = tp(now.AddDate(0, 0, 3))
	tasks["c"].DueAt = tp(now.AddDate(0, 0, 2))
	tasks["c"].Recurrence = &model.Recurrence{Type: model.RecurrenceRolling, IntervalDays: 5}

	scores := ScoreAll(tasks, now, DefaultConfig())
	require.Len(t, scores, len(tasks))
	for id, s := range scores {
		assert.GreaterOrEqual(t, s.Priority, 1, "task %s", id)
		assert.LessOrEqual(t, s.Priority, 100, "task %s", id)
		assert.GreaterOrEqual(t, s.Urgency, 0, "task %s", id)
		assert.LessOrEqual(t, s.Urgency, 100, "task %s", id)
		assert.GreaterOrEqual(t, s.ImportancePct, 0, "task %s", id)
		assert.LessOrEqual(t, s.ImportancePct, 100, "task %s", id)
	}
}
