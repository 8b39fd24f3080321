package model

import "sort"

// Board is the whole persisted state: the single shared task collection
// plus the WIP-limit map. It is only ever replaced as a unit.
type Board struct {
	Tasks     map[TaskID]*Task `json:"tasks"`
	WIPLimits map[string]*int  `json:"wipLimits,omitempty"`
}

func NewBoard() *Board {
	return &Board{
		Tasks:     map[TaskID]*Task{},
		WIPLimits: map[string]*int{},
	}
}

// Normalize repairs nil maps after JSON decoding.
func (b *Board) Normalize() {
	if b.Tasks == nil {
		b.Tasks = map[TaskID]*Task{}
	}
	if b.WIPLimits == nil {
		b.WIPLimits = map[string]*int{}
	}
}

func (b *Board) Clone() *Board {
	cp := NewBoard()
	for id, t := range b.Tasks {
		cp.Tasks[id] = t.Clone()
	}
	for k, v := range b.WIPLimits {
		if v == nil {
			cp.WIPLimits[k] = nil
			continue
		}
		n := *v
		cp.WIPLimits[k] = &n
	}
	return cp
}

// SortedIDs returns the task ids in lexical order, for deterministic
// iteration over the collection.
func (b *Board) SortedIDs() []TaskID {
	ids := make([]TaskID, 0, len(b.Tasks))
	for id := range b.Tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CountByState tallies stored states, for WIP-limit checks.
func (b *Board) CountByState() map[State]int {
	counts := make(map[State]int, 6)
	for _, t := range b.Tasks {
		counts[t.State]++
	}
	return counts
}
