// Package board is the write path of the task board. Every mutation of the
// shared task collection is submitted as a unit to a FIFO queue with a
// single consumer, so at most one mutation runs at a time and units
// complete in submission order. Inside a unit the engine loads the board,
// applies the edit, rescores the whole collection, persists atomically,
// and notifies the broadcaster. A failing unit resolves its caller with an
// error, leaves the persisted board untouched, and never stalls the queue.
package board

import (
	"context"
	"log/slog"
	"time"

	"github.com/korganrivera/kanban/internal/model"
	"github.com/korganrivera/kanban/internal/schedule"
	"github.com/korganrivera/kanban/internal/store"
	"github.com/korganrivera/kanban/internal/telemetry"
)

// Ledger is the points service credited on non-blocked completions.
type Ledger interface {
	Credit(userKey string, points int, reason string) error
}

// Broadcaster receives the fresh snapshot after every successful save.
type Broadcaster interface {
	Notify(snapshot []TaskView)
}

// TaskView is a task decorated with its derived state for readers.
type TaskView struct {
	model.Task
	EffectiveState model.State `json:"effectiveState"`
	ReadyAt        *time.Time  `json:"readyAt,omitempty"`
	Overdue        bool        `json:"overdue"`
}

type Options struct {
	Store       store.Store
	Clock       Clock
	IDs         IDGenerator
	Ledger      Ledger
	Broadcaster Broadcaster
	Events      telemetry.Repository
	Scoring     schedule.Config
	Logger      *slog.Logger
	QueueDepth  int
}

type Engine struct {
	store     store.Store
	clock     Clock
	ids       IDGenerator
	ledger    Ledger
	broadcast Broadcaster
	events    telemetry.Repository
	scoring   schedule.Config
	logger    *slog.Logger

	requests chan *mutation
	quit     chan struct{}
	done     chan struct{}

	// afterSave collects side effects staged by the unit in flight. They
	// run only once the save has succeeded; a unit that fails, or whose
	// save fails, drops them. Only the consumer goroutine touches this.
	afterSave []func()
}

type mutation struct {
	op    string
	apply func(b *model.Board, now time.Time) (any, error)
	reply chan mutationResult
}

type mutationResult struct {
	value any
	err   error
}

func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = UUIDGenerator{}
	}
	if opts.Scoring == (schedule.Config{}) {
		opts.Scoring = schedule.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 64
	}

	e := &Engine{
		store:     opts.Store,
		clock:     opts.Clock,
		ids:       opts.IDs,
		ledger:    opts.Ledger,
		broadcast: opts.Broadcaster,
		events:    opts.Events,
		scoring:   opts.Scoring,
		logger:    opts.Logger,
		requests:  make(chan *mutation, opts.QueueDepth),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go e.run()
	return e
}

// Close stops the consumer after it finishes the unit in flight.
// Mutations submitted after Close fail with ErrClosed.
func (e *Engine) Close() {
	close(e.quit)
	<-e.done
}

func (e *Engine) run() {
	defer close(e.done)
	for {
		select {
		case <-e.quit:
			return
		case m := <-e.requests:
			m.reply <- e.process(m)
		}
	}
}

// process executes one queued unit to completion. No cancellation applies
// here: a unit fails fast through validation, never by being abandoned.
func (e *Engine) process(m *mutation) mutationResult {
	now := e.clock.Now()
	e.afterSave = nil

	board, err := e.store.Load()
	if err != nil {
		e.logger.Error("board load failed", "op", m.op, "error", err)
		return mutationResult{err: wrapErr(ErrPersistence, m.op, "load board", err)}
	}

	value, err := m.apply(board, now)
	if err != nil {
		e.afterSave = nil
		return mutationResult{err: err}
	}

	e.rescore(board, now)

	if err := e.store.Save(board); err != nil {
		e.logger.Error("board save failed", "op", m.op, "error", err)
		e.afterSave = nil
		return mutationResult{err: wrapErr(ErrPersistence, m.op, "save board", err)}
	}

	for _, fn := range e.afterSave {
		fn()
	}
	e.afterSave = nil

	if e.broadcast != nil {
		e.broadcast.Notify(Views(board, now))
	}
	return mutationResult{value: value}
}

// record logs one telemetry event. Telemetry is best effort: a failing
// repository is reported, never propagated.
func (e *Engine) record(eventType telemetry.EventType, metadata telemetry.EventMetadata) {
	if e.events == nil {
		return
	}
	if err := e.events.RecordEvent(eventType, metadata); err != nil {
		e.logger.Warn("event record failed", "event", string(eventType), "error", err)
	}
}

// rescore writes the scorer's derived fields back onto every task.
func (e *Engine) rescore(board *model.Board, now time.Time) {
	scores := schedule.ScoreAll(board.Tasks, now, e.scoring)
	for id, t := range board.Tasks {
		s := scores[id]
		t.ImportanceRaw = s.ImportanceRaw
		t.ImportancePct = s.ImportancePct
		t.Urgency = s.Urgency
		t.Priority = s.Priority
		t.Deadlock = s.Deadlock
	}
}

// submit enqueues a unit and waits for its result. The context guards the
// wait in the queue only; once dequeued, the unit runs to completion and
// its result is discarded if the caller has gone.
func (e *Engine) submit(ctx context.Context, op string, apply func(*model.Board, time.Time) (any, error)) (any, error) {
	m := &mutation{op: op, apply: apply, reply: make(chan mutationResult, 1)}
	select {
	case e.requests <- m:
	case <-e.quit:
		return nil, wrapErr(ErrClosed, op, "", nil)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-m.reply:
		return res.value, res.err
	case <-e.done:
		// The consumer exited with this unit still queued.
		select {
		case res := <-m.reply:
			return res.value, res.err
		default:
			return nil, wrapErr(ErrClosed, op, "", nil)
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot is the read path: the latest persisted board decorated with
// derived state. It never goes through the queue and never blocks on a
// writer beyond the store's atomic replace.
func (e *Engine) Snapshot() ([]TaskView, error) {
	board, err := e.store.Load()
	if err != nil {
		return nil, wrapErr(ErrPersistence, "snapshot", "load board", err)
	}
	return Views(board, e.clock.Now()), nil
}

// WIPLimits returns the current limit map from the persisted board.
func (e *Engine) WIPLimits() (map[string]*int, error) {
	board, err := e.store.Load()
	if err != nil {
		return nil, wrapErr(ErrPersistence, "wip limits", "load board", err)
	}
	return board.Clone().WIPLimits, nil
}

// Views derives the user-visible state of every task, in id order.
func Views(board *model.Board, now time.Time) []TaskView {
	out := make([]TaskView, 0, len(board.Tasks))
	for _, id := range board.SortedIDs() {
		t := board.Tasks[id]
		d := schedule.Derive(t, board.Tasks, now)
		out = append(out, TaskView{
			Task:           *t.Clone(),
			EffectiveState: d.State,
			ReadyAt:        d.ReadyAt,
			Overdue:        d.Overdue,
		})
	}
	return out
}

// Recompute rescores and persists without any other edit. The periodic
// background pass uses it, so recomputation serializes with request
// mutations instead of racing them.
func (e *Engine) Recompute(ctx context.Context) error {
	_, err := e.submit(ctx, "recompute", func(b *model.Board, now time.Time) (any, error) {
		return nil, nil
	})
	if err != nil {
		return err
	}
	e.record(telemetry.EventRecompute, telemetry.EventMetadata{})
	return nil
}

// RunRecomputeLoop recomputes at a fixed interval until ctx is done.
func (e *Engine) RunRecomputeLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Recompute(ctx); err != nil && ctx.Err() == nil {
				e.logger.Warn("periodic recompute failed", "error", err)
			}
		}
	}
}
