package keymap

import "github.com/johan-st/sqlpane/internal/action"

// Resolver turns key presses into actions, holding a buffer of pending keys
// for multi-key sequences.
type Resolver struct {
	keymap   *Map
	pending  []string
	extended bool
}

// NewResolver returns a resolver over the given map.
func NewResolver(m *Map) *Resolver {
	if m == nil {
		m = NewMap()
	}
	return &Resolver{keymap: m}
}

// SetMap swaps the key map and drops any pending keys.
func (r *Resolver) SetMap(m *Map) {
	if m == nil {
		m = NewMap()
	}
	r.keymap = m
	r.Reset()
}

// Map returns the active key map.
func (r *Resolver) Map() *Map {
	return r.keymap
}

// Resolve looks up the pending buffer extended by k as a full sequence, then
// its shorter tails down to k alone. On a match the buffer is cleared and
// the action returned. Otherwise k is buffered and no action is produced.
func (r *Resolver) Resolve(region action.Region, k string) (action.Action, bool) {
	if k == "" {
		return nil, false
	}

	// longest suffix first, ending with k alone
	seq := append(append([]string(nil), r.pending...), k)
	for i := range seq {
		if a, ok := r.keymap.Lookup(region, seq[i:]); ok {
			r.Reset()
			return a, true
		}
	}

	r.pending = append(r.pending, k)
	// only the last longest-1 keys can prefix a sequence
	if limit := max(r.keymap.Longest()-1, 1); len(r.pending) > limit {
		r.pending = append(r.pending[:0], r.pending[len(r.pending)-limit:]...)
	}
	r.extended = true
	return nil, false
}

// Tick clears the pending buffer unless it was extended since the previous
// tick.
func (r *Resolver) Tick() {
	if !r.extended {
		r.pending = r.pending[:0]
	}
	r.extended = false
}

// Reset drops any pending keys.
func (r *Resolver) Reset() {
	r.pending = r.pending[:0]
	r.extended = false
}

// Pending returns a copy of the buffered keys.
func (r *Resolver) Pending() []string {
	return append([]string(nil), r.pending...)
}
