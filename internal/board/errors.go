package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/korganrivera/kanban/internal/model"
)

// Failure markers. Every operation error wraps exactly one of these so
// callers can classify without string matching. Validation, conflict, and
// not-found failures are rejected before any mutation is applied; a
// persistence failure means the in-memory result must not be treated as
// durable.
var (
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict error")
	ErrNotFound    = errors.New("task not found")
	ErrPersistence = errors.New("persistence error")
	ErrClosed      = errors.New("engine closed")
)

func wrapErr(marker error, op, message string, err error) error {
	detail := op
	if message != "" {
		detail += ": " + message
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// DeleteConflictError rejects a delete whose target still has dependents
// outside its own dependency closure. Callers retry with confirmation.
type DeleteConflictError struct {
	TaskID     model.TaskID
	Dependents []model.TaskID
}

func (e *DeleteConflictError) Error() string {
	ids := make([]string, len(e.Dependents))
	for i, id := range e.Dependents {
		ids[i] = string(id)
	}
	return fmt.Sprintf("conflict error: delete %s: still depended on by %s (pass confirm to delete anyway)",
		e.TaskID, strings.Join(ids, ", "))
}

func (e *DeleteConflictError) Unwrap() error { return ErrConflict }
