// Package state holds the UI state shared between components: which region
// owns keyboard input and the outcome of the latest query.
package state

import (
	"sync"
	"time"

	"github.com/johan-st/sqlpane/internal/action"
)

// Outcome summarizes the most recently applied query result.
type Outcome struct {
	Query    string
	Rows     int
	Duration time.Duration
	Err      string
}

// Snapshot is a copy of the state at one point in time.
type Snapshot struct {
	Focus      action.Region
	Connection string
	ReadOnly   bool
	Running    uint64 // id of the in-flight query, 0 if none
	Last       Outcome
	Status     string
}

// AppState is shared by handle between components. Every access holds the
// lock for a single read or mutate step only.
type AppState struct {
	mu sync.Mutex
	s  Snapshot
}

// New returns state focused on the given region.
func New(focus action.Region, connection string, readOnly bool) *AppState {
	return &AppState{s: Snapshot{Focus: focus, Connection: connection, ReadOnly: readOnly}}
}

// Focus returns the region that owns keyboard input.
func (a *AppState) Focus() action.Region {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.s.Focus
}

// SetFocus moves keyboard input to r.
func (a *AppState) SetFocus(r action.Region) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.s.Focus = r
}

// CycleFocus moves focus to the next or previous region and returns it.
func (a *AppState) CycleFocus(dir action.Cycle) action.Region {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(action.Regions)
	i := 0
	for j, r := range action.Regions {
		if r == a.s.Focus {
			i = j
			break
		}
	}
	if dir == action.Backward {
		i = (i - 1 + n) % n
	} else {
		i = (i + 1) % n
	}
	a.s.Focus = action.Regions[i]
	return a.s.Focus
}

// Snapshot returns a copy of the current state.
func (a *AppState) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.s
}

// Update applies fn to the state under the lock. fn must not block.
func (a *AppState) Update(fn func(*Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.s)
}
