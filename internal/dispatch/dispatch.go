// Package dispatch runs the action loop: key presses are resolved to actions
// for the focused region, and every action is broadcast to all components in
// a fixed order until the queue is drained.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/keymap"
	"github.com/johan-st/sqlpane/internal/state"
)

// MaxActionsPerPass bounds the number of actions handled in one drain pass.
const MaxActionsPerPass = 1024

// ErrRunaway is returned when follow-up actions keep a drain pass from
// finishing.
var ErrRunaway = errors.New("action loop did not settle")

// Task is work that runs off the loop. The action it returns, if any, is fed
// back into the loop.
type Task func(ctx context.Context) action.Action

// Result is what a handler wants done after seeing an event or an action.
type Result struct {
	Actions []action.Action
	Tasks   []Task
}

// Emit returns a result holding the given actions.
func Emit(actions ...action.Action) Result {
	return Result{Actions: actions}
}

// Run returns a result holding the given tasks.
func Run(tasks ...Task) Result {
	return Result{Tasks: tasks}
}

// Add appends other to r.
func (r *Result) Add(other Result) {
	r.Actions = append(r.Actions, other.Actions...)
	r.Tasks = append(r.Tasks, other.Tasks...)
}

// Handler receives every drained action.
type Handler interface {
	Init() Result
	Update(a action.Action) (Result, error)
}

// Component is a UI region. Keys that resolve to no action are handed to
// every component, with focused set for the one owning input.
type Component interface {
	Handler
	Region() action.Region
	HandleKey(msg tea.KeyMsg, focused bool) (Result, error)
}

// Capturer is implemented by components that sometimes collect free text,
// such as a name prompt. While the focused component captures, keys skip
// the key map and go to it directly.
type Capturer interface {
	Capturing() bool
}

// RenderFunc draws a frame of the given size.
type RenderFunc func(width, height int) string

// Loop owns the action queue. It is not safe for concurrent use: the host
// feeds it events from a single goroutine.
type Loop struct {
	state      *state.AppState
	resolver   *keymap.Resolver
	components []Component
	services   []Handler
	render     RenderFunc

	queue    []action.Action
	tasks    []Task
	quitting bool
	width    int
	height   int
	frame    string
	frames   int
}

// New returns a loop broadcasting to components in region order, then to
// services in the order given.
func New(st *state.AppState, resolver *keymap.Resolver, render RenderFunc, components []Component, services ...Handler) *Loop {
	byRegion := make([]Component, 0, len(components))
	for _, r := range action.Regions {
		for _, c := range components {
			if c.Region() == r {
				byRegion = append(byRegion, c)
			}
		}
	}
	if render == nil {
		render = func(int, int) string { return "" }
	}
	return &Loop{
		state:      st,
		resolver:   resolver,
		components: byRegion,
		services:   services,
		render:     render,
	}
}

func (l *Loop) handlers() []Handler {
	hs := make([]Handler, 0, len(l.components)+len(l.services))
	for _, c := range l.components {
		hs = append(hs, c)
	}
	return append(hs, l.services...)
}

// Init collects the initial actions and tasks of every handler and drains
// them.
func (l *Loop) Init() ([]Task, error) {
	for _, h := range l.handlers() {
		l.collect(h.Init())
	}
	return l.finish(l.drain())
}

// HandleEvent feeds one event into the loop and drains the resulting
// actions. Accepted events are key presses, window sizes and actions. The
// returned tasks are for the host to run. A Quit lets the pass finish
// without rendering, and events after it are ignored.
func (l *Loop) HandleEvent(msg tea.Msg) ([]Task, error) {
	if l.quitting {
		return nil, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if err := l.handleKey(msg); err != nil {
			return l.finish(err)
		}
	case tea.WindowSizeMsg:
		l.queue = append(l.queue, action.Resize{Width: msg.Width, Height: msg.Height})
	case action.Action:
		l.queue = append(l.queue, msg)
	default:
		return nil, nil
	}
	return l.finish(l.drain())
}

func (l *Loop) finish(err error) ([]Task, error) {
	tasks := l.tasks
	l.tasks = nil
	if err != nil {
		l.queue = nil
		return nil, err
	}
	return tasks, nil
}

func (l *Loop) handleKey(msg tea.KeyMsg) error {
	focus := l.state.Focus()

	if !l.capturing(focus) {
		if a, ok := l.resolver.Resolve(focus, msg.String()); ok {
			l.queue = append(l.queue, a)
			return nil
		}
	}

	for _, c := range l.components {
		r, err := c.HandleKey(msg, c.Region() == focus)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Region(), err)
		}
		l.collect(r)
	}
	return nil
}

func (l *Loop) capturing(focus action.Region) bool {
	for _, c := range l.components {
		if c.Region() != focus {
			continue
		}
		if cp, ok := c.(Capturer); ok && cp.Capturing() {
			return true
		}
	}
	return false
}

func (l *Loop) collect(r Result) {
	l.queue = append(l.queue, r.Actions...)
	l.tasks = append(l.tasks, r.Tasks...)
}

func (l *Loop) drain() error {
	for n := 0; len(l.queue) > 0; n++ {
		if n == MaxActionsPerPass {
			return fmt.Errorf("%w after %d actions", ErrRunaway, n)
		}
		a := l.queue[0]
		l.queue = l.queue[1:]

		switch a.(type) {
		case action.Tick, action.Render:
		default:
			log.Debug("action", "name", action.Name(a))
		}

		l.apply(a)

		for _, h := range l.handlers() {
			r, err := h.Update(a)
			if err != nil {
				return fmt.Errorf("%s: %w", action.Name(a), err)
			}
			l.collect(r)
		}

		if l.quitting {
			continue
		}
		switch a.(type) {
		case action.Render, action.Resize:
			l.frame = l.render(l.width, l.height)
			l.frames++
		}
	}
	return nil
}

// apply performs the global effects of an action before it is broadcast.
func (l *Loop) apply(a action.Action) {
	switch a := a.(type) {
	case action.Tick:
		l.resolver.Tick()
	case action.Quit:
		l.quitting = true
	case action.FocusChange:
		if l.state.Focus() != a.Region {
			l.resolver.Reset()
		}
		l.state.SetFocus(a.Region)
	case action.CycleFocus:
		l.state.CycleFocus(a.Direction)
		l.resolver.Reset()
	case action.Resize:
		l.width, l.height = a.Width, a.Height
	}
}

// SetKeymap swaps the key map of the resolver, dropping pending keys.
func (l *Loop) SetKeymap(m *keymap.Map) {
	l.resolver.SetMap(m)
}

// Keymap returns the active key map.
func (l *Loop) Keymap() *keymap.Map {
	return l.resolver.Map()
}

// Quitting reports whether a Quit action has been drained.
func (l *Loop) Quitting() bool {
	return l.quitting
}

// Frame returns the most recently rendered frame.
func (l *Loop) Frame() string {
	return l.frame
}

// Frames returns how many frames have been rendered.
func (l *Loop) Frames() int {
	return l.frames
}

// Size returns the size of the last Resize.
func (l *Loop) Size() (width, height int) {
	return l.width, l.height
}

// State returns the shared state.
func (l *Loop) State() *state.AppState {
	return l.state
}
