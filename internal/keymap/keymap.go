// Package keymap holds the per-region key sequence bindings and the resolver
// that turns key presses into actions.
package keymap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/johan-st/sqlpane/internal/action"
)

// Binding maps an ordered key sequence to an action. Keys use bubbletea
// notation ("ctrl+r", "G", "shift+tab").
type Binding struct {
	Keys   []string
	Action action.Action
	Help   string
}

// Map is a per-region ordered mapping from key sequences to actions.
type Map struct {
	regions map[action.Region]*regionMap
	longest int
}

type regionMap struct {
	bindings []Binding
	index    map[string]int
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{regions: make(map[action.Region]*regionMap)}
}

func seqKey(keys []string) string {
	return strings.Join(keys, "\x00")
}

// Bind adds a binding, replacing any existing binding for the same sequence
// in the region.
func (m *Map) Bind(region action.Region, keys []string, a action.Action, help string) {
	if len(keys) == 0 {
		return
	}
	rm, ok := m.regions[region]
	if !ok {
		rm = &regionMap{index: make(map[string]int)}
		m.regions[region] = rm
	}

	b := Binding{Keys: append([]string(nil), keys...), Action: a, Help: help}
	k := seqKey(keys)
	if i, ok := rm.index[k]; ok {
		rm.bindings[i] = b
	} else {
		rm.index[k] = len(rm.bindings)
		rm.bindings = append(rm.bindings, b)
	}

	if len(keys) > m.longest {
		m.longest = len(keys)
	}
}

// Lookup returns the action bound to exactly this sequence.
func (m *Map) Lookup(region action.Region, keys []string) (action.Action, bool) {
	rm, ok := m.regions[region]
	if !ok || len(keys) == 0 {
		return nil, false
	}
	i, ok := rm.index[seqKey(keys)]
	if !ok {
		return nil, false
	}
	return rm.bindings[i].Action, true
}

// Bindings returns the bindings of a region in insertion order.
func (m *Map) Bindings(region action.Region) []Binding {
	rm, ok := m.regions[region]
	if !ok {
		return nil
	}
	return append([]Binding(nil), rm.bindings...)
}

// Longest returns the length of the longest configured sequence.
func (m *Map) Longest() int {
	return m.longest
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	c := NewMap()
	for _, r := range action.Regions {
		for _, b := range m.Bindings(r) {
			c.Bind(r, b.Keys, b.Action, b.Help)
		}
	}
	return c
}

// Merge returns a copy of m with every binding of other applied on top.
func (m *Map) Merge(other *Map) *Map {
	c := m.Clone()
	if other == nil {
		return c
	}
	for _, r := range action.Regions {
		for _, b := range other.Bindings(r) {
			c.Bind(r, b.Keys, b.Action, b.Help)
		}
	}
	return c
}

// HelpBindings converts the region's bindings to bubbles key bindings for
// display with the help component. Bindings without help text are skipped.
func (m *Map) HelpBindings(region action.Region) []key.Binding {
	var out []key.Binding
	for _, b := range m.Bindings(region) {
		if b.Help == "" {
			continue
		}
		out = append(out, key.NewBinding(
			key.WithKeys(seqKey(b.Keys)),
			key.WithHelp(FormatSequence(b.Keys), b.Help),
		))
	}
	return out
}

// FromConfig builds a map from region name -> sequence notation -> action
// name, as found in the config file.
func FromConfig(raw map[string]map[string]string) (*Map, error) {
	m := NewMap()
	for regionName, bindings := range raw {
		region, err := action.ParseRegion(regionName)
		if err != nil {
			return nil, err
		}
		for seq, name := range bindings {
			keys, err := ParseSequence(seq)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", regionName, err)
			}
			a, err := action.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", regionName, seq, err)
			}
			m.Bind(region, keys, a, name)
		}
	}
	return m, nil
}
