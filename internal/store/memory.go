package store

import (
	"sync"

	"github.com/korganrivera/kanban/internal/model"
)

// MemoryStore is a Store for tests. It deep-copies on both paths so test
// code can't accidentally share task pointers with the engine.
type MemoryStore struct {
	mu    sync.RWMutex
	board *model.Board

	// FailNextSave makes the next Save return this error, for exercising
	// persistence-failure paths.
	FailNextSave error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{board: model.NewBoard()}
}

func (s *MemoryStore) Load() (*model.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Clone(), nil
}

func (s *MemoryStore) Save(board *model.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailNextSave; err != nil {
		s.FailNextSave = nil
		return err
	}
	s.board = board.Clone()
	return nil
}

// Seed replaces the stored board, bypassing the engine. Test setup only.
func (s *MemoryStore) Seed(board *model.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board.Normalize()
	s.board = board.Clone()
}
