package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/favorites"
	"github.com/johan-st/sqlpane/internal/keymap"
)

// Hub fans out changes picked up by file watchers to every running UI.
type Hub struct {
	mu   sync.Mutex
	apps map[*App]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{apps: make(map[*App]struct{})}
}

func (h *Hub) register(a *App) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.apps[a] = struct{}{}
}

func (h *Hub) unregister(a *App) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.apps, a)
}

// Len returns the number of registered UIs.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.apps)
}

func (h *Hub) broadcast(msg tea.Msg) {
	h.mu.Lock()
	apps := make([]*App, 0, len(h.apps))
	for a := range h.apps {
		apps = append(apps, a)
	}
	h.mu.Unlock()

	for _, a := range apps {
		a.Send(msg)
	}
}

// SetKeymap installs a key map in every UI.
func (h *Hub) SetKeymap(m *keymap.Map) {
	h.broadcast(keymapMsg{Keymap: m})
}

// FavoritesChanged pushes a fresh favorites list to every UI.
func (h *Hub) FavoritesChanged(favs []favorites.Favorite, err error) {
	h.broadcast(actionMsg{Action: action.FavoritesLoaded{Favorites: favs, Err: err}})
}
