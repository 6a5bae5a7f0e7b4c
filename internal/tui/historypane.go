package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/dispatch"
	"github.com/johan-st/sqlpane/internal/history"
)

type historyItem struct {
	entry history.Entry
}

func (i historyItem) FilterValue() string { return i.entry.Query }

// historyPane lists recently executed queries, newest first.
type historyPane struct {
	list list.Model
	err  error
}

func newHistoryPane() *historyPane {
	return &historyPane{list: newList(renderHistoryItem)}
}

func renderHistoryItem(item list.Item) string {
	e := item.(historyItem).entry
	query := strings.Join(strings.Fields(e.Query), " ")
	when := dimItemStyle.Render(humanize.Time(e.CreatedAt) + " ")
	if e.Failed() {
		return when + errorStyle.Render("✗ ") + query
	}
	return when + query
}

func (h *historyPane) Region() action.Region { return action.RegionHistory }

func (h *historyPane) Init() dispatch.Result { return dispatch.Result{} }

func (h *historyPane) HandleKey(msg tea.KeyMsg, focused bool) (dispatch.Result, error) {
	if !focused {
		return dispatch.Result{}, nil
	}
	if msg.String() == "enter" {
		it, ok := h.list.SelectedItem().(historyItem)
		if !ok {
			return dispatch.Result{}, nil
		}
		return dispatch.Emit(
			action.QueryToEditor{Lines: strings.Split(it.entry.Query, "\n")},
			action.FocusChange{Region: action.RegionEditor},
		), nil
	}
	h.list, _ = h.list.Update(msg)
	return dispatch.Result{}, nil
}

func (h *historyPane) Update(a action.Action) (dispatch.Result, error) {
	if a, ok := a.(action.HistoryLoaded); ok {
		h.err = a.Err
		items := make([]list.Item, len(a.Entries))
		for i, e := range a.Entries {
			items[i] = historyItem{entry: e}
		}
		h.list.SetItems(items)
		h.list.ResetSelected()
	}
	return dispatch.Result{}, nil
}

func (h *historyPane) View(width, height int, focused bool) string {
	var content string
	switch {
	case h.err != nil:
		content = errorStyle.Render(h.err.Error())
	case len(h.list.Items()) == 0:
		content = dimItemStyle.Render("No queries yet")
	default:
		h.list.SetSize(max(width-2, 1), max(height-2, 1))
		content = h.list.View()
	}
	return renderPane(content, width, height, "History", focused)
}
