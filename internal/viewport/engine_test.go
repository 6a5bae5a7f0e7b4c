package viewport

import (
	"fmt"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/johan-st/sqlpane/internal/action"
)

// numbered returns a w x h buffer whose cells encode their coordinates in
// the foreground color.
func numbered(w, h int) *Buffer {
	b := NewBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.SetCell(x, y, Cell{
				Content: string(rune('a' + (x+y)%26)),
				Style:   Style{Fg: colorOf(x, y)},
			})
		}
	}
	return b
}

func colorOf(x, y int) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("%d,%d", x, y))
}

func TestScrollScenario(t *testing.T) {
	// 500 content rows. The pane is either 80x24 usable cells inside the
	// border (82x26) or 80x24 including the border (78x22 usable).
	tests := []struct {
		name string
		pane Rect
		maxY int
	}{
		{"80x24 usable", Rect{Width: 82, Height: 26}, 500 - 24},
		{"80x24 with border", Rect{Width: 80, Height: 24}, 500 - 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			e.SetContent(numbered(400, 500), nil)
			e.SetArea(tt.pane)

			v, h := e.Scrollbars()
			if !v.Visible || !h.Visible {
				t.Fatalf("scrollbars visible = %v/%v, want both", v.Visible, h.Visible)
			}
			if _, my := e.MaxOffset(); my != tt.maxY {
				t.Fatalf("max y = %d, want %d", my, tt.maxY)
			}

			for i := 0; i < tt.maxY; i++ {
				e.Scroll(action.Down)
			}
			if _, y := e.Offset(); y != tt.maxY {
				t.Fatalf("offset y after %d downs = %d, want %d", tt.maxY, y, tt.maxY)
			}

			e.Scroll(action.Down)
			if _, y := e.Offset(); y != tt.maxY {
				t.Errorf("offset y after one more down = %d, want %d", y, tt.maxY)
			}
		})
	}
}

func TestOffsetsStayInBounds(t *testing.T) {
	sizes := []struct{ cw, ch, aw, ah int }{
		{10, 10, 5, 5},
		{3, 3, 20, 20},
		{100, 2, 12, 12},
		{2, 100, 12, 12},
		{0, 0, 10, 10},
		{50, 50, 0, 0},
	}
	moves := []action.Direction{action.Up, action.Left, action.Down, action.Right}

	for _, s := range sizes {
		e := NewEngine()
		e.SetContent(numbered(s.cw, s.ch), nil)
		e.SetArea(Rect{Width: s.aw, Height: s.ah})
		mx, my := e.MaxOffset()

		for round := 0; round < 4; round++ {
			for _, d := range moves {
				for i := 0; i < 150; i++ {
					e.Scroll(d)
					x, y := e.Offset()
					if x < 0 || x > mx || y < 0 || y > my {
						t.Fatalf("%+v: offset (%d,%d) outside [0,%d]x[0,%d]", s, x, y, mx, my)
					}
				}
			}
		}
	}
}

func TestScrollAtBoundIsNoop(t *testing.T) {
	e := NewEngine()
	e.SetContent(numbered(30, 30), nil)
	e.SetArea(Rect{Width: 12, Height: 12})

	e.Scroll(action.Up)
	e.Scroll(action.Left)
	if x, y := e.Offset(); x != 0 || y != 0 {
		t.Errorf("offset = (%d,%d), want (0,0)", x, y)
	}

	e.JumpRow(action.Last)
	e.JumpColumn(action.Last)
	wx, wy := e.Offset()
	e.Scroll(action.Down)
	e.Scroll(action.Right)
	if x, y := e.Offset(); x != wx || y != wy {
		t.Errorf("offset = (%d,%d), want (%d,%d)", x, y, wx, wy)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	content := numbered(50, 40)
	e := NewEngine()
	e.SetContent(content, nil)

	area := Rect{X: 3, Y: 2, Width: 22, Height: 12}
	dst := NewBuffer(30, 20)
	e.Render(dst, area)

	inner := area.Inset(Chrome)
	for y := 0; y < inner.Height; y++ {
		for x := 0; x < inner.Width; x++ {
			got := dst.Cell(inner.X+x, inner.Y+y)
			if want := content.Cell(x, y); got != want {
				t.Fatalf("cell (%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestRenderWithOffset(t *testing.T) {
	content := numbered(50, 40)
	e := NewEngine()
	e.SetContent(content, nil)
	area := Rect{Width: 12, Height: 12}
	e.SetArea(area)
	for i := 0; i < 5; i++ {
		e.Scroll(action.Down)
	}
	e.Scroll(action.Right)

	dst := NewBuffer(12, 12)
	e.Render(dst, area)
	if got, want := dst.Cell(1, 1), content.Cell(1, 5); got != want {
		t.Errorf("top left = %+v, want %+v", got, want)
	}
}

func TestRenderPadsSmallContent(t *testing.T) {
	e := NewEngine()
	e.SetContent(numbered(3, 2), nil)

	dst := NewBuffer(10, 10)
	dst.Fill(dst.Area(), Cell{Content: "x"})
	e.Render(dst, Rect{Width: 10, Height: 10})

	if got := dst.Cell(1, 1); got != numbered(3, 2).Cell(0, 0) {
		t.Errorf("cell (1,1) = %+v", got)
	}
	if got := dst.Cell(5, 5); got != Blank {
		t.Errorf("padding cell = %+v, want blank", got)
	}
	// chrome is left alone
	if got := dst.Cell(0, 0); got.Content != "x" {
		t.Errorf("chrome cell = %+v, want untouched", got)
	}

	v, h := e.Scrollbars()
	if v.Visible || h.Visible {
		t.Errorf("scrollbars visible = %v/%v, want none", v.Visible, h.Visible)
	}
}

func TestScrollbarsIndependent(t *testing.T) {
	e := NewEngine()
	e.SetContent(numbered(100, 3), nil)
	e.SetArea(Rect{Width: 12, Height: 12})
	v, h := e.Scrollbars()
	if v.Visible || !h.Visible {
		t.Errorf("wide content: vertical=%v horizontal=%v", v.Visible, h.Visible)
	}
	if h.Length != 90 {
		t.Errorf("horizontal length = %d, want 90", h.Length)
	}

	e.SetContent(numbered(3, 100), nil)
	v, h = e.Scrollbars()
	if !v.Visible || h.Visible {
		t.Errorf("tall content: vertical=%v horizontal=%v", v.Visible, h.Visible)
	}
}

func TestRenderZeroAreaIsNoop(t *testing.T) {
	e := NewEngine()
	e.SetContent(numbered(10, 10), nil)
	dst := NewBuffer(5, 5)
	dst.Fill(dst.Area(), Cell{Content: "x"})

	e.Render(dst, Rect{})
	e.Render(dst, Rect{Width: 2, Height: 2})
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if dst.Cell(x, y).Content != "x" {
				t.Fatalf("cell (%d,%d) written by empty render", x, y)
			}
		}
	}
}

func TestRenderZeroAreaKeepsViewport(t *testing.T) {
	e := NewEngine()
	e.SetContent(numbered(10, 100), nil)
	area := Rect{Width: 12, Height: 12}
	e.Render(NewBuffer(12, 12), area)
	for i := 0; i < 50; i++ {
		e.Scroll(action.Down)
	}

	e.Render(NewBuffer(1, 1), Rect{})
	if got := e.Area(); got != area {
		t.Errorf("Area() = %+v after empty render, want %+v", got, area)
	}
	e.Scroll(action.Down)
	if _, y := e.Offset(); y != 51 {
		t.Errorf("offset y = %d, want 51", y)
	}
}

func TestSetContentResetsOffsets(t *testing.T) {
	e := NewEngine()
	e.SetContent(numbered(100, 100), nil)
	e.SetArea(Rect{Width: 12, Height: 12})
	e.Scroll(action.Down)
	e.Scroll(action.Right)

	e.SetContent(numbered(100, 100), nil)
	if x, y := e.Offset(); x != 0 || y != 0 {
		t.Errorf("offset = (%d,%d), want (0,0)", x, y)
	}
}

func TestResizeClampsOffsets(t *testing.T) {
	e := NewEngine()
	e.SetContent(numbered(30, 30), nil)
	e.SetArea(Rect{Width: 12, Height: 12})
	e.JumpRow(action.Last)
	e.JumpColumn(action.Last)

	e.SetArea(Rect{Width: 27, Height: 22})
	if x, y := e.Offset(); x != 5 || y != 10 {
		t.Errorf("offset after grow = (%d,%d), want (5,10)", x, y)
	}
}

func TestStepColumn(t *testing.T) {
	e := NewEngine()
	e.SetContent(numbered(100, 5), []int{0, 10, 25, 60, 90})
	e.SetArea(Rect{Width: 32, Height: 7})

	var got []int
	for i := 0; i < 5; i++ {
		e.StepColumn(action.Right)
		x, _ := e.Offset()
		got = append(got, x)
	}
	// max x offset is 70
	want := []int{10, 25, 60, 70, 70}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("stepping right = %v, want %v", got, want)
	}

	got = got[:0]
	for i := 0; i < 5; i++ {
		e.StepColumn(action.Left)
		x, _ := e.Offset()
		got = append(got, x)
	}
	want = []int{60, 25, 10, 0, 0}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("stepping left = %v, want %v", got, want)
	}
}
