// Package broadcast fans out board snapshots to in-process subscribers.
package broadcast

import (
	"sync"

	"github.com/korganrivera/kanban/internal/board"
)

// Hub delivers each published snapshot to every subscriber. Delivery is
// non-blocking: a subscriber that has not drained its channel misses the
// update and catches up on the next one, since every snapshot is complete.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan []board.TaskView
	next int
}

func NewHub() *Hub {
	return &Hub{subs: map[int]chan []board.TaskView{}}
}

// Subscribe registers a new listener. The returned cancel func must be
// called when the listener is done.
func (h *Hub) Subscribe() (<-chan []board.TaskView, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan []board.TaskView, 1)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Notify publishes a snapshot to all current subscribers.
func (h *Hub) Notify(views []board.TaskView) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- views:
		default:
			// Slow subscriber; drop the stale snapshot and replace it.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- views:
			default:
			}
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
