package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Repository is an append-only log of board activity. Recording must be
// cheap and must never block a mutation; readers filter by time and type.
type Repository interface {
	RecordEvent(eventType EventType, metadata EventMetadata) error
	GetEvents(since time.Time, eventTypes []EventType) ([]Event, error)
	Clear() error
}

// maxEvents caps how much history a repository keeps. Old events fall off
// the front; the stats views only ever look at recent windows.
const maxEvents = 10000

type eventLog struct {
	events []Event
	nextID int
}

func (l *eventLog) append(eventType EventType, metadata EventMetadata, at time.Time) error {
	detail := ""
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		detail = string(b)
	}

	if l.nextID == 0 {
		l.nextID = 1
	}
	l.events = append(l.events, Event{
		ID:        l.nextID,
		Type:      eventType,
		Timestamp: at,
		Metadata:  detail,
	})
	l.nextID++
	if len(l.events) > maxEvents {
		l.events = l.events[len(l.events)-maxEvents:]
	}
	return nil
}

func (l *eventLog) filter(since time.Time, eventTypes []EventType) []Event {
	wanted := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		wanted[t] = true
	}

	out := make([]Event, 0, len(l.events))
	for _, event := range l.events {
		if event.Timestamp.Before(since) {
			continue
		}
		if len(wanted) > 0 && !wanted[event.Type] {
			continue
		}
		out = append(out, event)
	}
	return out
}

// MemoryRepository keeps events in memory only. Tests use it; so does any
// caller that wants activity for the life of one process.
type MemoryRepository struct {
	mu  sync.RWMutex
	log eventLog

	now func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.append(eventType, metadata, r.now())
}

func (r *MemoryRepository) GetEvents(since time.Time, eventTypes []EventType) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.log.filter(since, eventTypes), nil
}

func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = eventLog{}
	return nil
}

// FileRepository persists the log in <dataDir>/events.json so activity
// survives across CLI invocations.
type FileRepository struct {
	mu   sync.Mutex
	path string
	log  eventLog

	now func() time.Time
}

type fileState struct {
	NextID int     `json:"nextId"`
	Events []Event `json:"events"`
}

func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepository{
		path: filepath.Join(dataDir, "events.json"),
		now:  time.Now,
	}

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, err
	}
	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return nil, err
	}
	r.log = eventLog{events: loaded.Events, nextID: loaded.NextID}
	return r, nil
}

func (r *FileRepository) saveLocked() error {
	b, err := json.MarshalIndent(fileState{NextID: r.log.nextID, Events: r.log.events}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o644)
}

func (r *FileRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.log.append(eventType, metadata, r.now()); err != nil {
		return err
	}
	return r.saveLocked()
}

func (r *FileRepository) GetEvents(since time.Time, eventTypes []EventType) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.filter(since, eventTypes), nil
}

func (r *FileRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = eventLog{}
	return r.saveLocked()
}
