package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/dispatch"
)

// tableItem implements list.Item for bubbles/list
type tableItem struct {
	schema string
	table  database.TableNode
}

func (i tableItem) FilterValue() string { return i.table.Name }

// itemDelegate renders one line per item.
type itemDelegate struct {
	render func(item list.Item) string
}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	line := d.render(item)
	if index == m.Index() {
		fmt.Fprint(w, selectedItemStyle.Render("› "+line))
		return
	}
	fmt.Fprint(w, normalItemStyle.Render("  "+line))
}

func newList(render func(list.Item) string) list.Model {
	l := list.New(nil, itemDelegate{render: render}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

// menuPane is the schema browser.
type menuPane struct {
	list    list.Model
	schemas int
	loaded  bool
	err     error
}

func newMenuPane() *menuPane {
	m := &menuPane{}
	m.list = newList(m.renderItem)
	return m
}

func (m *menuPane) renderItem(item list.Item) string {
	it := item.(tableItem)
	name := it.table.Name
	if m.schemas > 1 {
		name = it.schema + "." + name
	}
	if it.table.IsView {
		return name + dimItemStyle.Render(" (view)")
	}
	return name
}

func (m *menuPane) Region() action.Region { return action.RegionMenu }

func (m *menuPane) Init() dispatch.Result { return dispatch.Result{} }

var previewKeys = map[string]database.PreviewKind{
	"enter": database.PreviewRows,
	"c":     database.PreviewColumns,
	"i":     database.PreviewIndexes,
	"f":     database.PreviewConstraints,
}

func (m *menuPane) HandleKey(msg tea.KeyMsg, focused bool) (dispatch.Result, error) {
	if !focused {
		return dispatch.Result{}, nil
	}
	if kind, ok := previewKeys[msg.String()]; ok {
		it, ok := m.list.SelectedItem().(tableItem)
		if !ok {
			return dispatch.Result{}, nil
		}
		return dispatch.Emit(action.MenuPreview{Kind: kind, Schema: it.schema, Table: it.table.Name}), nil
	}
	m.list, _ = m.list.Update(msg)
	return dispatch.Result{}, nil
}

func (m *menuPane) Update(a action.Action) (dispatch.Result, error) {
	if a, ok := a.(action.MenuLoaded); ok {
		m.loaded = true
		m.err = a.Err
		m.schemas = len(a.Schemas)
		var items []list.Item
		for _, s := range a.Schemas {
			for _, t := range s.Tables {
				items = append(items, tableItem{schema: s.Name, table: t})
			}
		}
		m.list.SetItems(items)
		m.list.ResetSelected()
	}
	return dispatch.Result{}, nil
}

func (m *menuPane) View(width, height int, focused bool) string {
	var content string
	switch {
	case !m.loaded:
		content = dimItemStyle.Render("Loading...")
	case m.err != nil:
		content = errorStyle.Render(m.err.Error())
	case len(m.list.Items()) == 0:
		content = dimItemStyle.Render("No tables")
	default:
		m.list.SetSize(max(width-2, 1), max(height-2, 1))
		content = m.list.View()
	}
	return renderPane(content, width, height, "Tables", focused)
}
