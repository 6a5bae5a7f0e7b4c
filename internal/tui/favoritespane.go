package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/dispatch"
	"github.com/johan-st/sqlpane/internal/favorites"
)

type favoriteItem struct {
	fav favorites.Favorite
}

func (i favoriteItem) FilterValue() string { return i.fav.Name }

// favoritesPane lists saved queries and asks for a name when saving.
type favoritesPane struct {
	list      list.Model
	name      textinput.Model
	prompting bool
	lines     []string
	err       error
}

func newFavoritesPane() *favoritesPane {
	ti := textinput.New()
	ti.Prompt = "name: "
	ti.Placeholder = "my query"
	ti.CharLimit = 64
	return &favoritesPane{
		list: newList(renderFavoriteItem),
		name: ti,
	}
}

func renderFavoriteItem(item list.Item) string {
	f := item.(favoriteItem).fav
	first := strings.TrimSpace(f.Lines()[0])
	return f.Name + dimItemStyle.Render(" "+first)
}

func (f *favoritesPane) Region() action.Region { return action.RegionFavorites }

func (f *favoritesPane) Init() dispatch.Result { return dispatch.Result{} }

// Capturing holds keys while a name is typed.
func (f *favoritesPane) Capturing() bool { return f.prompting }

func (f *favoritesPane) HandleKey(msg tea.KeyMsg, focused bool) (dispatch.Result, error) {
	if !focused {
		return dispatch.Result{}, nil
	}

	if f.prompting {
		switch msg.String() {
		case "enter":
			name := strings.TrimSpace(f.name.Value())
			if err := favorites.ValidateName(name); err != nil {
				return dispatch.Emit(action.Error{Message: err.Error()}), nil
			}
			lines := f.lines
			f.stopPrompt()
			return dispatch.Emit(
				action.FavoriteRequest{Name: name, Lines: lines},
				action.FocusChange{Region: action.RegionEditor},
			), nil
		case "esc", "ctrl+c":
			f.stopPrompt()
			return dispatch.Emit(action.FocusChange{Region: action.RegionEditor}), nil
		}
		f.name, _ = f.name.Update(msg)
		return dispatch.Result{}, nil
	}

	it, selected := f.list.SelectedItem().(favoriteItem)
	switch msg.String() {
	case "enter":
		if selected {
			return dispatch.Emit(
				action.QueryToEditor{Lines: it.fav.Lines()},
				action.FocusChange{Region: action.RegionEditor},
			), nil
		}
		return dispatch.Result{}, nil
	case "d", "delete":
		if selected {
			return dispatch.Emit(action.DeleteFavorite{Name: it.fav.Name}), nil
		}
		return dispatch.Result{}, nil
	}
	f.list, _ = f.list.Update(msg)
	return dispatch.Result{}, nil
}

func (f *favoritesPane) stopPrompt() {
	f.prompting = false
	f.lines = nil
	f.name.Blur()
	f.name.Reset()
}

func (f *favoritesPane) Update(a action.Action) (dispatch.Result, error) {
	switch a := a.(type) {
	case action.PromptFavoriteName:
		f.prompting = true
		f.lines = a.Lines
		f.name.Reset()
		f.name.Focus()
		return dispatch.Emit(action.FocusChange{Region: action.RegionFavorites}), nil

	case action.FocusChange:
		if f.prompting && a.Region != action.RegionFavorites {
			f.stopPrompt()
		}

	case action.FavoritesLoaded:
		f.err = a.Err
		items := make([]list.Item, len(a.Favorites))
		for i, fav := range a.Favorites {
			items[i] = favoriteItem{fav: fav}
		}
		f.list.SetItems(items)
	}
	return dispatch.Result{}, nil
}

func (f *favoritesPane) View(width, height int, focused bool) string {
	var content string
	switch {
	case f.prompting:
		f.name.Width = max(width-2-len(f.name.Prompt)-1, 1)
		content = f.name.View() + "\n" + dimItemStyle.Render("enter save · esc cancel")
	case f.err != nil:
		content = errorStyle.Render(f.err.Error())
	case len(f.list.Items()) == 0:
		content = dimItemStyle.Render("No favorites")
	default:
		f.list.SetSize(max(width-2, 1), max(height-2, 1))
		content = f.list.View()
	}
	return renderPane(content, width, height, "Favorites", focused)
}
