package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korganrivera/kanban/internal/model"
)

func graphTasks(deps map[model.TaskID][]model.TaskID) map[model.TaskID]*model.Task {
	out := make(map[model.TaskID]*model.Task, len(deps))
	for id, d := range deps {
		out[id] = &model.Task{ID: id, State: model.StateReady, DependsOn: d}
	}
	return out
}

func TestWouldCycle_SelfEdge(t *testing.T) {
	tasks := graphTasks(map[model.TaskID][]model.TaskID{"a": nil})
	assert.True(t, WouldCycle(tasks, "a", "a"))
}

func TestWouldCycle_DirectAndTransitive(t *testing.T) {
	// c -> b -> a
	tasks := graphTasks(map[model.TaskID][]model.TaskID{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
	})

	// a -> c would close the loop, directly or via b.
	assert.True(t, WouldCycle(tasks, "a", "b"))
	assert.True(t, WouldCycle(tasks, "a", "c"))
	assert.True(t, WouldCycle(tasks, "b", "c"))

	// Forward edges and siblings are fine.
	assert.False(t, WouldCycle(tasks, "c", "a"))
	assert.False(t, WouldCycle(tasks, "b", "a"))
}

func TestAnalyze_AcyclicVisitsEveryNodeOnce(t *testing.T) {
	tasks := graphTasks(map[model.TaskID][]model.TaskID{
		"a": nil,
		"b": {"a"},
		"c": {"a", "b"},
		"d": nil,
	})

	g := Analyze(tasks)

	require.Len(t, g.Order, 4)
	assert.Empty(t, g.Deadlocked)

	seen := map[model.TaskID]int{}
	for _, id := range g.Order {
		seen[id]++
	}
	for id := range tasks {
		assert.Equal(t, 1, seen[id], "task %s", id)
	}

	// Dependents come before the tasks they depend on.
	pos := map[model.TaskID]int{}
	for i, id := range g.Order {
		pos[id] = i
	}
	assert.Less(t, pos["c"], pos["b"])
	assert.Less(t, pos["b"], pos["a"])
	assert.Less(t, pos["c"], pos["a"])
}

func TestAnalyze_CycleMembersAreDeadlocked(t *testing.T) {
	// a -> b -> c -> a, with d hanging off the cycle but not in it.
	tasks := graphTasks(map[model.TaskID][]model.TaskID{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
		"d": {"a"},
	})

	g := Analyze(tasks)

	assert.True(t, g.Deadlocked["a"])
	assert.True(t, g.Deadlocked["b"])
	assert.True(t, g.Deadlocked["c"])
	assert.False(t, g.Deadlocked["d"])
	assert.Equal(t, []model.TaskID{"d"}, g.Order)
}

func TestAnalyze_IgnoresDanglingEdges(t *testing.T) {
	tasks := graphTasks(map[model.TaskID][]model.TaskID{
		"a": {"missing"},
		"b": {"a"},
	})

	g := Analyze(tasks)
	assert.Len(t, g.Order, 2)
	assert.Empty(t, g.Deadlocked)
}

func TestClosure(t *testing.T) {
	tasks := graphTasks(map[model.TaskID][]model.TaskID{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
		"d": {"a"},
	})

	closure := Closure(tasks, "c")
	assert.Equal(t, map[model.TaskID]bool{"c": true, "b": true, "a": true}, closure)

	closure = Closure(tasks, "a")
	assert.Equal(t, map[model.TaskID]bool{"a": true}, closure)
}
