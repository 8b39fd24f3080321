package board

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/korganrivera/kanban/internal/model"
)

type IDGenerator interface {
	NewTaskID() model.TaskID
}

// UUIDGenerator issues globally unique, prefixed task ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewTaskID() model.TaskID {
	return model.TaskID("task_" + uuid.NewString())
}

// SequenceGenerator issues predictable ids for tests.
type SequenceGenerator struct {
	n atomic.Int64
}

func (g *SequenceGenerator) NewTaskID() model.TaskID {
	return model.TaskID(fmt.Sprintf("task_%d", g.n.Add(1)))
}
