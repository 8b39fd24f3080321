package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/korganrivera/kanban/internal/model"
)

// Config carries the scoring parameters. DefaultConfig matches the shipped
// balance; internal/config lets deployments override it.
type Config struct {
	WindowDays       int
	Decay            float64
	UrgencyWeight    float64
	ImportanceWeight float64
}

func DefaultConfig() Config {
	return Config{
		WindowDays:       30,
		Decay:            0.5,
		UrgencyWeight:    0.4,
		ImportanceWeight: 0.6,
	}
}

// Score is the derived scoring view of one task. The caller writes it back
// onto the task; ScoreAll itself mutates nothing.
type Score struct {
	ImportanceRaw float64
	ImportancePct int
	Urgency       int
	Priority      int
	Deadlock      bool
}

// ScoreAll computes importance, urgency, and composite priority for every
// task in the collection.
//
// Importance propagates along the dependents-first order from Analyze:
// each processed task adds 1 + decay·rawImportance(itself) to every task it
// depends on. Cycle members are excluded from the order, contribute
// nothing, and are forced to raw importance 0.
func ScoreAll(tasks map[model.TaskID]*model.Task, now time.Time, cfg Config) map[model.TaskID]Score {
	g := Analyze(tasks)

	raw := make(map[model.TaskID]float64, len(tasks))
	for _, id := range g.Order {
		for _, dep := range tasks[id].DependsOn {
			if _, ok := tasks[dep]; !ok {
				continue
			}
			raw[dep] += 1 + cfg.Decay*raw[id]
		}
	}
	for id := range g.Deadlocked {
		raw[id] = 0
	}

	pct := percentiles(tasks, raw)

	out := make(map[model.TaskID]Score, len(tasks))
	for id, t := range tasks {
		s := Score{
			ImportanceRaw: raw[id],
			ImportancePct: pct[id],
			Urgency:       Urgency(t, now, cfg),
			Deadlock:      g.Deadlocked[id],
		}
		p := int(math.Round(cfg.UrgencyWeight*float64(s.Urgency)+cfg.ImportanceWeight*float64(s.ImportancePct))) + 1
		s.Priority = clamp(p, 1, 100)
		out[id] = s
	}
	return out
}

// percentiles rank-normalizes raw importance across the population:
// round(100 · strictlySmaller / (n-1)), clamped. A population of one (or
// none) has no discriminating signal and scores 0 for everyone.
func percentiles(tasks map[model.TaskID]*model.Task, raw map[model.TaskID]float64) map[model.TaskID]int {
	n := len(tasks)
	out := make(map[model.TaskID]int, n)
	if n <= 1 {
		for id := range tasks {
			out[id] = 0
		}
		return out
	}

	values := make([]float64, 0, n)
	for id := range tasks {
		values = append(values, raw[id])
	}
	sort.Float64s(values)

	for id := range tasks {
		smaller := sort.SearchFloat64s(values, raw[id])
		p := int(math.Round(100 * float64(smaller) / float64(n-1)))
		out[id] = clamp(p, 0, 100)
	}
	return out
}

// Urgency is the time-pressure component in [0,100].
//
// A hard deadline dominates: linear ramp from 0 at WindowDays out to 100 at
// the deadline. Rolling recurring tasks ramp across their own interval.
// A plain due date is a soft deadline and uses the window ramp.
func Urgency(t *model.Task, now time.Time, cfg Config) int {
	switch {
	case t.Deadline != nil:
		return ramp(now, *t.Deadline, cfg.WindowDays)
	case t.DueAt != nil && t.Recurrence != nil &&
		t.Recurrence.Type == model.RecurrenceRolling && t.Recurrence.IntervalDays > 0:
		return ramp(now, *t.DueAt, t.Recurrence.IntervalDays)
	case t.DueAt != nil:
		return ramp(now, *t.DueAt, cfg.WindowDays)
	default:
		return 0
	}
}

func ramp(now, target time.Time, windowDays int) int {
	if windowDays <= 0 {
		windowDays = 1
	}
	remaining := target.Sub(now)
	if remaining <= 0 {
		return 100
	}
	window := time.Duration(windowDays) * 24 * time.Hour
	if remaining >= window {
		return 0
	}
	return clamp(int(math.Round(100*(1-remaining.Seconds()/window.Seconds()))), 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
