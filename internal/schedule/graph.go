package schedule

import (
	"sort"

	"github.com/korganrivera/kanban/internal/model"
)

// GraphResult is the outcome of analyzing the depends-on relation.
//
// Order lists every acyclic task exactly once, dependents before the tasks
// they depend on, so a single forward pass can propagate importance.
// Deadlocked is the complement: members of at least one dependency cycle.
type GraphResult struct {
	Order      []model.TaskID
	Deadlocked map[model.TaskID]bool
}

// WouldCycle reports whether inserting the edge (taskID depends on depID)
// would make taskID transitively depend on itself. Self-edges always cycle.
// The search is an iterative reachability walk from depID, so it holds no
// call stack proportional to graph depth.
func WouldCycle(tasks map[model.TaskID]*model.Task, taskID, depID model.TaskID) bool {
	if taskID == depID {
		return true
	}
	seen := map[model.TaskID]bool{depID: true}
	stack := []model.TaskID{depID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t, ok := tasks[cur]
		if !ok {
			continue
		}
		for _, next := range t.DependsOn {
			if next == taskID {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Analyze runs Kahn's algorithm over the depends-on relation.
//
// A node's in-degree is the number of tasks depending on it; zero-in-degree
// nodes (nothing depends on them) are peeled off first, which yields the
// dependents-first order the scorer needs. Nodes never peeled are cycle
// members and land in Deadlocked. This is deliberately independent of the
// pre-insertion check in WouldCycle: it still catches cycles introduced by
// bulk edits that never went through the per-edge path.
func Analyze(tasks map[model.TaskID]*model.Task) GraphResult {
	ids := make([]model.TaskID, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	indeg := make(map[model.TaskID]int, len(tasks))
	for _, id := range ids {
		indeg[id] = 0
	}
	for _, id := range ids {
		for _, dep := range tasks[id].DependsOn {
			if _, ok := tasks[dep]; ok {
				indeg[dep]++
			}
		}
	}

	queue := make([]model.TaskID, 0, len(tasks))
	for _, id := range ids {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]model.TaskID, 0, len(tasks))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range tasks[id].DependsOn {
			if _, ok := tasks[dep]; !ok {
				continue
			}
			indeg[dep]--
			if indeg[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	deadlocked := make(map[model.TaskID]bool)
	if len(order) < len(tasks) {
		inOrder := make(map[model.TaskID]bool, len(order))
		for _, id := range order {
			inOrder[id] = true
		}
		for _, id := range ids {
			if !inOrder[id] {
				deadlocked[id] = true
			}
		}
	}

	return GraphResult{Order: order, Deadlocked: deadlocked}
}

// Closure returns id plus everything it transitively depends on.
// The walk is iterative over the id→task map.
func Closure(tasks map[model.TaskID]*model.Task, id model.TaskID) map[model.TaskID]bool {
	closure := map[model.TaskID]bool{id: true}
	stack := []model.TaskID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t, ok := tasks[cur]
		if !ok {
			continue
		}
		for _, dep := range t.DependsOn {
			if _, ok := tasks[dep]; !ok {
				continue
			}
			if !closure[dep] {
				closure[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return closure
}
