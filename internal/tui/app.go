// Package tui runs the interactive client: five panes driven by the action
// loop, hosted in a bubbletea program.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/dispatch"
	"github.com/johan-st/sqlpane/internal/favorites"
	"github.com/johan-st/sqlpane/internal/history"
	"github.com/johan-st/sqlpane/internal/keymap"
	"github.com/johan-st/sqlpane/internal/state"
	"github.com/johan-st/sqlpane/internal/viewport"
)

// Minimum terminal size.
const (
	minWidth  = 40
	minHeight = 12
)

// flushTimeout bounds the work run after a Quit.
const flushTimeout = 2 * time.Second

// Options configures one UI session.
type Options struct {
	Manager    *database.Manager
	Connection string
	User       *access.UserInfo
	RemoteAddr string
	History    *history.Store   // optional
	Favorites  *favorites.Store // optional
	Hub        *Hub             // optional
	Keymap     *keymap.Map
	ExportDir  string // empty disables export
	TickRate   time.Duration
	FrameRate  time.Duration
	Clipboard  bool
	Width      int
	Height     int
}

// pane is a region that can draw itself.
type pane interface {
	dispatch.Component
	View(width, height int, focused bool) string
}

// App is the main TUI application model.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	loop    *dispatch.Loop
	panes   map[action.Region]pane
	chrome  *chrome
	session *history.Session
	history *history.Store
	hub     *Hub

	tick     time.Duration
	frame    time.Duration
	width    int
	height   int
	external chan tea.Msg
	err      error
}

// NewApp creates a new TUI application.
func NewApp(opts Options) (*App, error) {
	if opts.Manager == nil {
		return nil, errors.New("tui: no database manager")
	}
	if opts.User == nil {
		opts.User = access.Local()
	}
	level := opts.Manager.GetAccessLevel(opts.User, opts.Connection)
	if !level.CanRead() {
		return nil, fmt.Errorf("access denied to connection: %s", opts.Connection)
	}
	if opts.Keymap == nil {
		opts.Keymap = keymap.Default()
	}
	if opts.TickRate <= 0 {
		opts.TickRate = 250 * time.Millisecond
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = time.Second / 30
	}

	dialect := database.SQLite
	for _, c := range opts.Manager.ListConnections(opts.User) {
		if c.Name == opts.Connection {
			dialect = c.Dialect
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctx:      ctx,
		cancel:   cancel,
		history:  opts.History,
		hub:      opts.Hub,
		tick:     opts.TickRate,
		frame:    opts.FrameRate,
		width:    opts.Width,
		height:   opts.Height,
		external: make(chan tea.Msg, 16),
	}

	a.session = history.NewSession(opts.User, opts.RemoteAddr)
	if a.history != nil {
		if err := a.history.CreateSession(ctx, a.session); err != nil {
			log.Warn("failed to record session", "err", err)
		}
	}

	st := state.New(action.RegionEditor, opts.Connection, !level.CanWrite())
	resolver := keymap.NewResolver(opts.Keymap)

	a.panes = map[action.Region]pane{
		action.RegionMenu:      newMenuPane(),
		action.RegionEditor:    newEditorPane(dialect),
		action.RegionHistory:   newHistoryPane(),
		action.RegionData:      newDataPane(),
		action.RegionFavorites: newFavoritesPane(),
	}
	components := make([]dispatch.Component, 0, len(a.panes))
	for _, p := range a.panes {
		components = append(components, p)
	}

	runner := &queryRunner{
		ctx:        ctx,
		exec:       managerExecutor(opts.Manager, opts.Connection, opts.User),
		state:      st,
		history:    opts.History,
		session:    a.session,
		connection: opts.Connection,
	}
	ld := &loader{
		manager:    opts.Manager,
		connection: opts.Connection,
		user:       opts.User,
		history:    opts.History,
		session:    a.session,
		favorites:  opts.Favorites,
		exportDir:  opts.ExportDir,
		clipboard:  opts.Clipboard,
		now:        time.Now,
	}

	var loop *dispatch.Loop
	a.chrome = newChrome(st, func() *keymap.Map { return loop.Keymap() }, opts.User.DisplayName(), level)
	loop = dispatch.New(st, resolver, a.render, components, runner, ld, a.chrome)
	a.loop = loop

	if a.hub != nil {
		a.hub.register(a)
	}
	return a, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	tasks, err := a.loop.Init()
	if err != nil {
		return a.fail(err)
	}
	cmds := []tea.Cmd{tickEvery(a.tick), frameEvery(a.frame), listen(a.external)}
	if a.width > 0 && a.height > 0 {
		more, err := a.loop.HandleEvent(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		if err != nil {
			return a.fail(err)
		}
		tasks = append(tasks, more...)
	}
	for _, t := range tasks {
		cmds = append(cmds, runTask(a.ctx, t))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return a, tea.Batch(a.handle(action.Tick{}), tickEvery(a.tick))
	case frameMsg:
		return a, tea.Batch(a.handle(action.Render{}), frameEvery(a.frame))
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, a.handle(msg)
	case tea.KeyMsg:
		return a, a.handle(msg)
	case tea.ResumeMsg:
		return a, a.handle(action.Resume{})
	case actionMsg:
		return a, a.handle(msg.Action)
	case externalMsg:
		var cmd tea.Cmd
		switch inner := msg.Msg.(type) {
		case keymapMsg:
			a.loop.SetKeymap(inner.Keymap)
			log.Debug("keymap reloaded")
		case actionMsg:
			cmd = a.handle(inner.Action)
		}
		return a, tea.Batch(cmd, listen(a.external))
	}
	return a, nil
}

// handle feeds one event into the loop and turns the resulting tasks into
// commands.
func (a *App) handle(event tea.Msg) tea.Cmd {
	tasks, err := a.loop.HandleEvent(event)
	if err != nil {
		return a.fail(err)
	}
	if a.loop.Quitting() {
		a.cancel()
		a.flush(tasks)
		return tea.Quit
	}
	if len(tasks) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(tasks))
	for i, t := range tasks {
		cmds[i] = runTask(a.ctx, t)
	}
	return tea.Batch(cmds...)
}

// flush runs the tasks of the final pass, such as saving a favorite, and
// discards their results. Queries see the cancelled app context and stop.
func (a *App) flush(tasks []dispatch.Task) {
	if len(tasks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t(ctx)
		}()
	}
	wg.Wait()
}

func (a *App) fail(err error) tea.Cmd {
	log.Error("ui stopped", "err", err)
	a.err = err
	a.cancel()
	return tea.Quit
}

// View implements tea.Model. It returns the frame drawn by the last Render
// or Resize action.
func (a *App) View() string {
	return a.loop.Frame()
}

// Err returns the error that stopped the UI, if any.
func (a *App) Err() error {
	return a.err
}

// Send delivers a message from another goroutine. It gives up once the UI
// has stopped.
func (a *App) Send(msg tea.Msg) {
	select {
	case a.external <- msg:
	case <-a.ctx.Done():
	}
}

// Close stops background work and ends the history session.
func (a *App) Close() {
	a.cancel()
	if a.hub != nil {
		a.hub.unregister(a)
	}
	if a.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.history.EndSession(ctx, a.session.ID); err != nil {
			log.Warn("failed to end session", "err", err)
		}
	}
}

// render draws every pane and the status lines.
func (a *App) render(width, height int) string {
	if width < minWidth || height < minHeight {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			errorStyle.Render(fmt.Sprintf("Terminal too small\nMin: %dx%d", minWidth, minHeight)))
	}
	if a.chrome.showHelp {
		return a.chrome.helpView(width, height)
	}

	focus := a.loop.State().Focus()
	rects := layout(width, height)
	view := func(r action.Region) string {
		rect := rects[r]
		return a.panes[r].View(rect.Width, rect.Height, r == focus)
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		view(action.RegionMenu),
		view(action.RegionHistory),
		view(action.RegionFavorites),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		view(action.RegionEditor),
		view(action.RegionData),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return body + "\n" + a.chrome.view(width)
}

// layout splits the screen: a left column of a quarter of the width holds
// menu, history and favorites; the right column holds editor and data.
// The status lines take the bottom rows.
func layout(width, height int) map[action.Region]viewport.Rect {
	body := max(height-statusHeight, 0)
	leftW := max(width/4, 20)
	rightW := max(width-leftW, 0)

	menuH := body / 2
	historyH := (body - menuH) / 2
	favoritesH := body - menuH - historyH

	editorH := max(body*35/100, 5)
	dataH := max(body-editorH, 0)

	return map[action.Region]viewport.Rect{
		action.RegionMenu:      {X: 0, Y: 0, Width: leftW, Height: menuH},
		action.RegionHistory:   {X: 0, Y: menuH, Width: leftW, Height: historyH},
		action.RegionFavorites: {X: 0, Y: menuH + historyH, Width: leftW, Height: favoritesH},
		action.RegionEditor:    {X: leftW, Y: 0, Width: rightW, Height: editorH},
		action.RegionData:      {X: leftW, Y: editorH, Width: rightW, Height: dataH},
	}
}
