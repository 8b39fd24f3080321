// Package points keeps per-user point balances earned from completions.
package points

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

var ErrInvalidCredit = errors.New("credit needs a user and positive points")

type Entry struct {
	At     time.Time `json:"at"`
	User   string    `json:"user"`
	Points int       `json:"points"`
	Reason string    `json:"reason,omitempty"`
}

type ledgerState struct {
	Balances map[string]int `json:"balances"`
	Entries  []Entry        `json:"entries,omitempty"`
}

// FileLedger is a persistent ledger: current balances plus an append-only
// entry log, in <dataDir>/points.json.
type FileLedger struct {
	mu   sync.RWMutex
	path string
	s    ledgerState

	now func() time.Time
}

func NewFileLedger(dataDir string) (*FileLedger, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	l := &FileLedger{
		path: filepath.Join(dataDir, "points.json"),
		s:    ledgerState{Balances: map[string]int{}},
		now:  time.Now,
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLedger) load() error {
	b, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var loaded ledgerState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Balances == nil {
		loaded.Balances = map[string]int{}
	}
	l.s = loaded
	return nil
}

func (l *FileLedger) saveLocked() error {
	b, err := json.MarshalIndent(l.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, b, 0o644)
}

// Credit adds points to a user's balance and logs the entry. A failed
// save rolls the credit back, so memory never runs ahead of disk and a
// retried credit lands exactly once.
func (l *FileLedger) Credit(user string, pts int, reason string) error {
	if user == "" || pts <= 0 {
		return ErrInvalidCredit
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.s.Balances[user] += pts
	l.s.Entries = append(l.s.Entries, Entry{
		At:     l.now(),
		User:   user,
		Points: pts,
		Reason: reason,
	})
	if err := l.saveLocked(); err != nil {
		l.s.Balances[user] -= pts
		if l.s.Balances[user] == 0 {
			delete(l.s.Balances, user)
		}
		l.s.Entries = l.s.Entries[:len(l.s.Entries)-1]
		return err
	}
	return nil
}

func (l *FileLedger) Balance(user string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.s.Balances[user]
}

// Balances returns every user's balance, sorted by user key.
func (l *FileLedger) Balances() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	users := make([]string, 0, len(l.s.Balances))
	for u := range l.s.Balances {
		users = append(users, u)
	}
	sort.Strings(users)

	out := make([]Entry, 0, len(users))
	for _, u := range users {
		out = append(out, Entry{User: u, Points: l.s.Balances[u]})
	}
	return out
}

func (l *FileLedger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.s.Entries...)
}
