package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/keymap"
)

// helpKeys presents the bindings of the focused region to the bubbles help
// component.
type helpKeys struct {
	keys   *keymap.Map
	region action.Region
}

// ShortHelp returns key bindings for the short help view.
func (k helpKeys) ShortHelp() []key.Binding {
	return k.keys.HelpBindings(k.region)
}

// FullHelp returns key bindings for the full help view: the focused region
// first, then every other region that has documented bindings.
func (k helpKeys) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{k.keys.HelpBindings(k.region)}
	for _, r := range action.Regions {
		if r == k.region {
			continue
		}
		if b := k.keys.HelpBindings(r); len(b) > 0 {
			groups = append(groups, b)
		}
	}
	return groups
}

// paneKeys lists the keys panes handle themselves, shown in the help
// overlay.
var paneKeys = map[action.Region][]key.Binding{
	action.RegionMenu: {
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview rows")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "columns")),
		key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "indexes")),
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "foreign keys")),
	},
	action.RegionHistory: {
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit query")),
	},
	action.RegionFavorites: {
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit query")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	},
}
