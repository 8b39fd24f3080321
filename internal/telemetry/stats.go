package telemetry

import (
	"time"

	"github.com/korganrivera/kanban/internal/model"
)

// TaskSample is the slice of a task snapshot that stats care about.
type TaskSample struct {
	State     model.State
	Overdue   bool
	Deadlock  bool
	Recurring bool
	Priority  int
}

type Stats struct {
	Tasks           int                 `json:"tasks"`
	ByState         map[model.State]int `json:"by_state"`
	Overdue         int                 `json:"overdue"`
	Deadlocked      int                 `json:"deadlocked"`
	Actionable      int                 `json:"actionable"`
	Recurring       int                 `json:"recurring"`
	TopPriority     int                 `json:"top_priority"`
	AveragePriority float64             `json:"average_priority"`
}

// BoardStats summarizes a board snapshot.
func BoardStats(samples []TaskSample) Stats {
	stats := Stats{ByState: make(map[model.State]int)}

	total := 0
	for _, s := range samples {
		stats.Tasks++
		stats.ByState[s.State]++
		if s.Overdue {
			stats.Overdue++
		}
		if s.Deadlock {
			stats.Deadlocked++
		}
		if s.State == model.StateReady || s.Overdue {
			stats.Actionable++
		}
		if s.Recurring {
			stats.Recurring++
		}
		if s.Priority > stats.TopPriority {
			stats.TopPriority = s.Priority
		}
		total += s.Priority
	}
	if stats.Tasks > 0 {
		stats.AveragePriority = float64(total) / float64(stats.Tasks)
	}
	return stats
}

// EventStats counts events per type since a cutoff.
func EventStats(events []Event, since time.Time) map[EventType]int {
	counts := make(map[EventType]int)
	for _, event := range events {
		if event.Timestamp.Before(since) {
			continue
		}
		counts[event.Type]++
	}
	return counts
}
