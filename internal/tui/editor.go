package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/dispatch"
)

// confirmation is a destructive query waiting for y/n.
type confirmation struct {
	lines  []string
	reason string
}

// editorPane is the query editor.
type editorPane struct {
	input   textarea.Model
	dialect database.Dialect
	confirm *confirmation
}

func newEditorPane(dialect database.Dialect) *editorPane {
	ta := textarea.New()
	ta.Placeholder = "SELECT * FROM ..."
	ta.ShowLineNumbers = true
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Cursor.SetMode(cursor.CursorStatic)
	return &editorPane{input: ta, dialect: dialect}
}

func (e *editorPane) Region() action.Region { return action.RegionEditor }

func (e *editorPane) Init() dispatch.Result { return dispatch.Result{} }

// Capturing holds keys while a confirmation is pending, so esc answers it.
func (e *editorPane) Capturing() bool { return e.confirm != nil }

func (e *editorPane) lines() []string {
	return strings.Split(e.input.Value(), "\n")
}

func (e *editorPane) setLines(lines []string) {
	e.input.SetValue(strings.Join(lines, "\n"))
}

func (e *editorPane) syncFocus(focused bool) {
	if focused == e.input.Focused() {
		return
	}
	if focused {
		e.input.Focus()
	} else {
		e.input.Blur()
	}
}

func (e *editorPane) HandleKey(msg tea.KeyMsg, focused bool) (dispatch.Result, error) {
	if !focused {
		return dispatch.Result{}, nil
	}

	if e.confirm != nil {
		switch msg.String() {
		case "y", "Y":
			lines := e.confirm.lines
			e.confirm = nil
			return dispatch.Emit(action.SubmitQuery{Lines: lines, Confirmed: true}), nil
		case "n", "N", "esc", "ctrl+c":
			e.confirm = nil
			return dispatch.Emit(action.Notice{Text: "query cancelled"}), nil
		}
		return dispatch.Result{}, nil
	}

	e.syncFocus(true)
	e.input, _ = e.input.Update(msg)
	return dispatch.Result{}, nil
}

func (e *editorPane) Update(a action.Action) (dispatch.Result, error) {
	switch a := a.(type) {
	case action.SubmitEditorQuery:
		return dispatch.Emit(action.SubmitQuery{Lines: e.lines(), BypassParser: a.BypassParser}), nil

	case action.SubmitQuery:
		if a.Confirmed || a.BypassParser {
			break
		}
		if need, reason := database.NeedsConfirmation(strings.Join(a.Lines, "\n")); need {
			e.confirm = &confirmation{lines: a.Lines, reason: reason}
			return dispatch.Emit(action.FocusChange{Region: action.RegionEditor}), nil
		}

	case action.MenuPreview:
		query := database.PreviewQuery(e.dialect, a.Kind, a.Schema, a.Table)
		e.confirm = nil
		e.input.SetValue(query)
		return dispatch.Emit(action.SubmitQuery{Lines: e.lines(), Confirmed: true}), nil

	case action.QueryToEditor:
		e.confirm = nil
		e.setLines(a.Lines)

	case action.RequestSaveFavorite:
		if strings.TrimSpace(e.input.Value()) == "" {
			return dispatch.Emit(action.Error{Message: "nothing to save: the editor is empty"}), nil
		}
		return dispatch.Emit(action.PromptFavoriteName{Lines: e.lines()}), nil
	}
	return dispatch.Result{}, nil
}

func (e *editorPane) View(width, height int, focused bool) string {
	e.syncFocus(focused)

	innerWidth, innerHeight := max(width-2, 1), max(height-2, 1)
	var prompt string
	if e.confirm != nil {
		prompt = confirmStyle.Render("Run "+e.confirm.reason+"? ") + queryPromptStyle.Render("[y/n]")
		innerHeight = max(innerHeight-1, 1)
	}
	e.input.SetWidth(innerWidth)
	e.input.SetHeight(innerHeight)

	content := e.input.View()
	if prompt != "" {
		content += "\n" + prompt
	}
	return renderPane(content, width, height, "Query", focused)
}
