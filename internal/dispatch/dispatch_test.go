package dispatch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/keymap"
	"github.com/johan-st/sqlpane/internal/state"
)

// recorder is a component that logs what it sees into a shared journal.
type recorder struct {
	region   action.Region
	journal  *[]string
	state    *state.AppState
	onUpdate func(a action.Action) Result
	onKey    func(msg tea.KeyMsg, focused bool) Result
	capture  bool
	err      error
}

func (r *recorder) Region() action.Region { return r.region }

func (r *recorder) Init() Result { return Result{} }

func (r *recorder) Capturing() bool { return r.capture }

func (r *recorder) HandleKey(msg tea.KeyMsg, focused bool) (Result, error) {
	*r.journal = append(*r.journal, fmt.Sprintf("%s key %s focused=%t", r.region, msg, focused))
	if r.onKey != nil {
		return r.onKey(msg, focused), nil
	}
	return Result{}, nil
}

func (r *recorder) Update(a action.Action) (Result, error) {
	entry := fmt.Sprintf("%s %s", r.region, action.Name(a))
	if _, ok := a.(action.FocusChange); ok && r.state != nil {
		entry += " sees " + r.state.Focus().String()
	}
	*r.journal = append(*r.journal, entry)
	if r.err != nil {
		return Result{}, r.err
	}
	if r.onUpdate != nil {
		return r.onUpdate(a), nil
	}
	return Result{}, nil
}

func testMap() *keymap.Map {
	m := keymap.NewMap()
	m.Bind(action.RegionData, []string{"g", "g"}, action.JumpRow{Edge: action.First}, "top")
	m.Bind(action.RegionData, []string{"j"}, action.Scroll{Direction: action.Down}, "")
	m.Bind(action.RegionMenu, []string{"q"}, action.Quit{}, "")
	m.Bind(action.RegionMenu, []string{"tab"}, action.CycleFocus{Direction: action.Forward}, "")
	return m
}

type fixture struct {
	loop    *Loop
	journal *[]string
	comps   map[action.Region]*recorder
	renders *int
}

func newFixture(t *testing.T, focus action.Region) *fixture {
	t.Helper()
	journal := &[]string{}
	st := state.New(focus, "test", false)
	comps := make(map[action.Region]*recorder)
	var list []Component
	// registered out of order; the loop sorts by region
	for _, r := range []action.Region{action.RegionData, action.RegionMenu, action.RegionFavorites, action.RegionEditor, action.RegionHistory} {
		c := &recorder{region: r, journal: journal, state: st}
		comps[r] = c
		list = append(list, c)
	}
	renders := new(int)
	render := func(w, h int) string {
		*renders++
		return fmt.Sprintf("frame %d %dx%d", *renders, w, h)
	}
	return &fixture{
		loop:    New(st, keymap.NewResolver(testMap()), render, list),
		journal: journal,
		comps:   comps,
		renders: renders,
	}
}

func (f *fixture) reset() {
	*f.journal = (*f.journal)[:0]
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBroadcastOrder(t *testing.T) {
	f := newFixture(t, action.RegionData)

	if _, err := f.loop.HandleEvent(action.Refresh{}); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	want := []string{
		"menu Refresh",
		"editor Refresh",
		"history Refresh",
		"data Refresh",
		"favorites Refresh",
	}
	if !reflect.DeepEqual(*f.journal, want) {
		t.Errorf("journal = %q, want %q", *f.journal, want)
	}
}

func TestDoubleGResolvesToJumpTop(t *testing.T) {
	f := newFixture(t, action.RegionData)

	if _, err := f.loop.HandleEvent(key("g")); err != nil {
		t.Fatal(err)
	}
	// unresolved: forwarded raw to every component
	if len(*f.journal) != 5 {
		t.Fatalf("first g: journal = %q, want 5 raw key entries", *f.journal)
	}
	if got := (*f.journal)[3]; got != "data key g focused=true" {
		t.Errorf("data entry = %q, want focused raw key", got)
	}
	if got := (*f.journal)[0]; got != "menu key g focused=false" {
		t.Errorf("menu entry = %q, want unfocused raw key", got)
	}

	f.reset()
	if _, err := f.loop.HandleEvent(key("g")); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"menu JumpRow",
		"editor JumpRow",
		"history JumpRow",
		"data JumpRow",
		"favorites JumpRow",
	}
	if !reflect.DeepEqual(*f.journal, want) {
		t.Errorf("second g: journal = %q, want %q", *f.journal, want)
	}
}

func TestTickClearsPendingKeys(t *testing.T) {
	f := newFixture(t, action.RegionData)

	f.loop.HandleEvent(key("g"))
	f.loop.HandleEvent(action.Tick{}) // extended since the last tick
	f.loop.HandleEvent(action.Tick{}) // not extended: clears
	f.reset()

	f.loop.HandleEvent(key("g"))
	for _, e := range *f.journal {
		if e == "data JumpRow" {
			t.Fatalf("g after two ticks resolved to JumpRow, journal = %q", *f.journal)
		}
	}
}

func TestFocusChangeIsAppliedBeforeBroadcast(t *testing.T) {
	f := newFixture(t, action.RegionMenu)

	f.loop.HandleEvent(action.FocusChange{Region: action.RegionHistory})

	for _, e := range *f.journal {
		if !strings.HasSuffix(e, "FocusChange sees history") {
			t.Errorf("entry = %q, want every component to see the new focus", e)
		}
	}
	if got := f.loop.State().Focus(); got != action.RegionHistory {
		t.Errorf("Focus() = %v, want history", got)
	}
}

func TestFocusChangeDropsPendingKeys(t *testing.T) {
	f := newFixture(t, action.RegionData)

	f.loop.HandleEvent(key("g"))
	f.loop.HandleEvent(action.FocusChange{Region: action.RegionMenu})
	f.loop.HandleEvent(action.FocusChange{Region: action.RegionData})
	f.reset()

	f.loop.HandleEvent(key("g"))
	if len(*f.journal) != 5 {
		t.Errorf("journal = %q, want g to stay pending after focus moved", *f.journal)
	}
}

func TestKeyIsScopedByFocus(t *testing.T) {
	f := newFixture(t, action.RegionMenu)

	f.loop.HandleEvent(tea.KeyMsg{Type: tea.KeyTab})
	if got := f.loop.State().Focus(); got != action.RegionEditor {
		t.Fatalf("after tab Focus() = %v, want editor", got)
	}

	// j is only bound in data
	f.reset()
	f.loop.HandleEvent(key("j"))
	if len(*f.journal) != 5 || (*f.journal)[1] != "editor key j focused=true" {
		t.Errorf("journal = %q, want j forwarded raw with editor focused", *f.journal)
	}
}

func TestFollowUpsDrainInSamePass(t *testing.T) {
	f := newFixture(t, action.RegionEditor)
	f.comps[action.RegionEditor].onUpdate = func(a action.Action) Result {
		if _, ok := a.(action.SubmitEditorQuery); ok {
			return Emit(action.SubmitQuery{Lines: []string{"SELECT 1"}})
		}
		return Result{}
	}

	f.loop.HandleEvent(action.SubmitEditorQuery{})

	want := []string{
		"menu SubmitEditorQuery",
		"editor SubmitEditorQuery",
		"history SubmitEditorQuery",
		"data SubmitEditorQuery",
		"favorites SubmitEditorQuery",
		"menu SubmitQuery",
		"editor SubmitQuery",
		"history SubmitQuery",
		"data SubmitQuery",
		"favorites SubmitQuery",
	}
	if !reflect.DeepEqual(*f.journal, want) {
		t.Errorf("journal = %q, want %q", *f.journal, want)
	}
}

func TestRawKeyFollowUps(t *testing.T) {
	f := newFixture(t, action.RegionMenu)
	f.comps[action.RegionMenu].onKey = func(msg tea.KeyMsg, focused bool) Result {
		if focused && msg.Type == tea.KeyEnter {
			return Emit(action.LoadMenu{})
		}
		return Result{}
	}

	f.loop.HandleEvent(tea.KeyMsg{Type: tea.KeyEnter})

	n := 0
	for _, e := range *f.journal {
		if e == "menu LoadMenu" || e == "favorites LoadMenu" {
			n++
		}
	}
	if n != 2 {
		t.Errorf("journal = %q, want LoadMenu broadcast after the raw key", *f.journal)
	}
}

func TestRunawayFollowUps(t *testing.T) {
	f := newFixture(t, action.RegionData)
	f.comps[action.RegionData].onUpdate = func(a action.Action) Result {
		return Emit(action.Refresh{})
	}

	_, err := f.loop.HandleEvent(action.Refresh{})
	if !errors.Is(err, ErrRunaway) {
		t.Errorf("HandleEvent() error = %v, want ErrRunaway", err)
	}
}

func TestComponentErrorIsFatal(t *testing.T) {
	f := newFixture(t, action.RegionData)
	boom := errors.New("boom")
	f.comps[action.RegionHistory].err = boom

	_, err := f.loop.HandleEvent(action.Refresh{})
	if !errors.Is(err, boom) {
		t.Errorf("HandleEvent() error = %v, want %v", err, boom)
	}
}

func TestOneRenderPerRenderOrResize(t *testing.T) {
	f := newFixture(t, action.RegionData)

	f.loop.HandleEvent(tea.WindowSizeMsg{Width: 80, Height: 24})
	f.loop.HandleEvent(action.Tick{})
	f.loop.HandleEvent(action.Render{})
	f.loop.HandleEvent(action.Scroll{Direction: action.Down})

	if *f.renders != 2 {
		t.Errorf("renders = %d, want 2", *f.renders)
	}
	if got, want := f.loop.Frame(), "frame 2 80x24"; got != want {
		t.Errorf("Frame() = %q, want %q", got, want)
	}
	if w, h := f.loop.Size(); w != 80 || h != 24 {
		t.Errorf("Size() = %dx%d, want 80x24", w, h)
	}
}

func TestQuitFinishesPassWithoutRendering(t *testing.T) {
	f := newFixture(t, action.RegionMenu)
	f.comps[action.RegionMenu].onUpdate = func(a action.Action) Result {
		if _, ok := a.(action.Refresh); ok {
			return Emit(action.Quit{}, action.FavoriteRequest{Name: "q", Lines: []string{"SELECT 1"}}, action.Render{})
		}
		return Result{}
	}
	saved := false
	f.comps[action.RegionFavorites].onUpdate = func(a action.Action) Result {
		if _, ok := a.(action.FavoriteRequest); ok {
			return Run(func(context.Context) action.Action {
				saved = true
				return nil
			})
		}
		return Result{}
	}

	tasks, err := f.loop.HandleEvent(action.Refresh{})
	if err != nil {
		t.Fatal(err)
	}
	if !f.loop.Quitting() {
		t.Fatal("Quitting() = false after Quit")
	}

	for _, want := range []string{"menu Quit", "favorites Quit", "favorites FavoriteRequest", "data Render"} {
		found := false
		for _, e := range *f.journal {
			if e == want {
				found = true
			}
		}
		if !found {
			t.Errorf("journal = %q, missing %q", *f.journal, want)
		}
	}
	if *f.renders != 0 {
		t.Errorf("renders = %d, want 0", *f.renders)
	}

	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	tasks[0](context.Background())
	if !saved {
		t.Error("task queued after Quit did not run")
	}

	f.reset()
	f.loop.HandleEvent(action.Render{})
	if len(*f.journal) != 0 {
		t.Errorf("events after quit were handled: %q", *f.journal)
	}
}

func TestQuitKey(t *testing.T) {
	f := newFixture(t, action.RegionMenu)

	f.loop.HandleEvent(key("q"))
	if !f.loop.Quitting() {
		t.Error("Quitting() = false after q in menu")
	}
}

func TestCapturingComponentGetsKeysRaw(t *testing.T) {
	f := newFixture(t, action.RegionMenu)
	f.comps[action.RegionMenu].capture = true

	f.loop.HandleEvent(key("q"))
	if f.loop.Quitting() {
		t.Fatal("q quit while the menu was capturing input")
	}
	if got := (*f.journal)[0]; got != "menu key q focused=true" {
		t.Errorf("journal[0] = %q, want raw q", got)
	}
}

func TestTasksAreReturned(t *testing.T) {
	f := newFixture(t, action.RegionData)
	task := func(context.Context) action.Action { return action.Notice{Text: "done"} }
	f.comps[action.RegionData].onUpdate = func(a action.Action) Result {
		if _, ok := a.(action.LoadMenu); ok {
			return Run(task)
		}
		return Result{}
	}

	tasks, err := f.loop.HandleEvent(action.LoadMenu{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if got := tasks[0](context.Background()); got != (action.Notice{Text: "done"}) {
		t.Errorf("task() = %#v", got)
	}

	tasks, _ = f.loop.HandleEvent(action.Tick{})
	if len(tasks) != 0 {
		t.Errorf("tasks after Tick = %d, want 0", len(tasks))
	}
}

type service struct {
	seen []string
}

func (s *service) Init() Result {
	return Emit(action.LoadMenu{})
}

func (s *service) Update(a action.Action) (Result, error) {
	s.seen = append(s.seen, action.Name(a))
	return Result{}, nil
}

func TestServicesRunAfterComponents(t *testing.T) {
	journal := &[]string{}
	st := state.New(action.RegionMenu, "", false)
	menu := &recorder{region: action.RegionMenu, journal: journal}
	svc := &service{}
	loop := New(st, keymap.NewResolver(nil), nil, []Component{menu}, svc)

	if _, err := loop.Init(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(*journal, []string{"menu LoadMenu"}) {
		t.Errorf("journal = %q", *journal)
	}
	if !reflect.DeepEqual(svc.seen, []string{"LoadMenu"}) {
		t.Errorf("service saw %q, want [LoadMenu]", svc.seen)
	}
}
