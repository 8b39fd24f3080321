package telemetry

import "time"

type EventType string

const (
	EventTaskCreated        EventType = "task_created"
	EventTaskEdited         EventType = "task_edited"
	EventTaskDeleted        EventType = "task_deleted"
	EventStateChanged       EventType = "state_changed"
	EventDependencyAdded    EventType = "dependency_added"
	EventDependencyRemoved  EventType = "dependency_removed"
	EventTaskCompleted      EventType = "task_completed"
	EventRecurrenceAdvanced EventType = "recurrence_advanced"
	EventRecompute          EventType = "recompute"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
