package progress

// State maps level ids to solved status. Absent keys mean unsolved.
type State map[int]bool

// Solved reports whether the given level has been solved.
func (s State) Solved(levelID int) bool {
	return s[levelID]
}

// MarkSolved records a level as solved and reports whether that changed
// anything. Solved state only moves from false to true; there is no way
// to un-solve a single level short of a full reset.
func (s State) MarkSolved(levelID int) bool {
	if s[levelID] {
		return false
	}
	s[levelID] = true
	return true
}

// CompletedCount returns the number of solved levels.
func (s State) CompletedCount() int {
	n := 0
	for _, solved := range s {
		if solved {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	c := make(State, len(s))
	for id, solved := range s {
		c[id] = solved
	}
	return c
}

// Store persists solved state across sessions. Load never fails: a
// missing or unreadable record is simply an empty state, the player
// starts fresh rather than crashing. Save overwrites the whole mapping.
type Store interface {
	Load() State
	Save(State) error
	Reset() error
}

// Factory hands out a Store scoped to one player key, so every
// session's solved levels survive process restarts independently.
type Factory interface {
	StoreFor(key string) (Store, error)
}
