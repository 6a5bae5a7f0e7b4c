package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/dispatch"
	"github.com/johan-st/sqlpane/internal/keymap"
)

// Messages for async operations

// actionMsg carries an action produced off the loop, by a task or a
// watcher, back into it.
type actionMsg struct {
	Action action.Action
}

// tickMsg drives action.Tick at the configured tick rate.
type tickMsg struct{}

// frameMsg drives action.Render at the configured frame rate.
type frameMsg struct{}

// keymapMsg installs a reloaded key map.
type keymapMsg struct {
	Keymap *keymap.Map
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{} })
}

func frameEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return frameMsg{} })
}

// runTask turns a task into a command delivering its action.
func runTask(ctx context.Context, t dispatch.Task) tea.Cmd {
	return func() tea.Msg {
		a := t(ctx)
		if a == nil {
			return nil
		}
		return actionMsg{Action: a}
	}
}

// listen waits for the next message pushed from outside the program.
func listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return externalMsg{msg}
	}
}

// externalMsg wraps a message received by listen, so the listener can be
// re-armed.
type externalMsg struct {
	Msg tea.Msg
}
