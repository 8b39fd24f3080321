// Package store persists the board state as a single JSON document.
// Writers replace the whole document atomically (write to a temporary file,
// then rename), so a concurrent reader never observes a partial board.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/korganrivera/kanban/internal/model"
)

// Store is the task-collection accessor the engine mutates through.
type Store interface {
	Load() (*model.Board, error)
	Save(*model.Board) error
}

// FileStore keeps the board in <dataDir>/board.json. A flock guards
// against other processes; the mutex guards against goroutines sharing
// this instance outside the engine's single-writer queue.
type FileStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{
		path: filepath.Join(dataDir, "board.json"),
		lock: flock.New(filepath.Join(dataDir, "board.lock")),
	}, nil
}

func (s *FileStore) Load() (*model.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewBoard(), nil
		}
		return nil, fmt.Errorf("read board: %w", err)
	}

	board := model.NewBoard()
	if err := json.Unmarshal(b, board); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	board.Normalize()
	return board, nil
}

func (s *FileStore) Save(board *model.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock board: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	b, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".board-*.json")
	if err != nil {
		return fmt.Errorf("create temp board: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp board: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp board: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp board: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp board: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace board: %w", err)
	}
	return nil
}
