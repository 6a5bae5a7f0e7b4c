package viewport

import (
	"sort"

	"github.com/johan-st/sqlpane/internal/action"
)

// Chrome is the number of cells taken by the border on each side of the
// physical area.
const Chrome = 1

// Scrollbar describes one axis. It is only drawn when Visible.
type Scrollbar struct {
	Visible  bool
	Position int // current offset
	Length   int // maximum offset
	Viewport int // usable cells on the axis
}

// Engine owns a virtual content buffer and the scroll offsets into it.
// Offsets are clamped whenever they change, so rendering never sees an
// out of range offset.
type Engine struct {
	content *Buffer
	columns []int
	area    Rect
	offX    int
	offY    int
}

// NewEngine returns an engine with no content.
func NewEngine() *Engine {
	return &Engine{}
}

// SetContent replaces the virtual buffer and resets both offsets to zero.
// columns holds the x position where each column of the content starts and
// drives column stepping.
func (e *Engine) SetContent(b *Buffer, columns []int) {
	e.content = b
	e.columns = append([]int(nil), columns...)
	sort.Ints(e.columns)
	e.offX, e.offY = 0, 0
}

// Reset drops the content and resets offsets.
func (e *Engine) Reset() {
	e.content = nil
	e.columns = nil
	e.offX, e.offY = 0, 0
}

// Content returns the virtual buffer, nil if none.
func (e *Engine) Content() *Buffer {
	return e.content
}

// SetArea sets the physical area including chrome and re-clamps offsets.
func (e *Engine) SetArea(r Rect) {
	e.area = r
	e.clamp()
}

// Area returns the physical area including chrome.
func (e *Engine) Area() Rect {
	return e.area
}

// Usable returns the physical area without chrome.
func (e *Engine) Usable() Rect {
	return e.area.Inset(Chrome)
}

// Offset returns the current x and y offsets.
func (e *Engine) Offset() (x, y int) {
	return e.offX, e.offY
}

// MaxOffset returns max(0, content - usable) per axis.
func (e *Engine) MaxOffset() (x, y int) {
	if e.content == nil {
		return 0, 0
	}
	u := e.Usable()
	return max(0, e.content.Width-u.Width), max(0, e.content.Height-u.Height)
}

func (e *Engine) clamp() {
	mx, my := e.MaxOffset()
	e.offX = min(max(e.offX, 0), mx)
	e.offY = min(max(e.offY, 0), my)
}

// Scroll moves one cell in the given direction.
func (e *Engine) Scroll(d action.Direction) {
	switch d {
	case action.Up:
		e.offY--
	case action.Down:
		e.offY++
	case action.Left:
		e.offX--
	case action.Right:
		e.offX++
	}
	e.clamp()
}

// StepColumn moves the x offset to the start of the next or previous column.
func (e *Engine) StepColumn(d action.Direction) {
	switch d {
	case action.Right:
		next := -1
		for _, c := range e.columns {
			if c > e.offX {
				next = c
				break
			}
		}
		if next < 0 {
			next, _ = e.MaxOffset()
		}
		e.offX = next
	case action.Left:
		prev := 0
		for _, c := range e.columns {
			if c >= e.offX {
				break
			}
			prev = c
		}
		e.offX = prev
	}
	e.clamp()
}

// JumpRow moves to the first or last row.
func (e *Engine) JumpRow(edge action.Edge) {
	if edge == action.Last {
		_, e.offY = e.MaxOffset()
	} else {
		e.offY = 0
	}
}

// JumpColumn moves to the first or last column.
func (e *Engine) JumpColumn(edge action.Edge) {
	if edge == action.Last {
		e.offX, _ = e.MaxOffset()
	} else {
		e.offX = 0
	}
}

// Render copies the visible window of the content into the usable part of
// area on dst. Cells outside the content are blank. An area different from
// the last one is applied first. An area with no usable cells leaves both
// dst and the engine untouched.
func (e *Engine) Render(dst *Buffer, area Rect) {
	if area.Inset(Chrome).Empty() {
		return
	}
	if area != e.area {
		e.SetArea(area)
	}
	inner := e.Usable()
	for py := 0; py < inner.Height; py++ {
		for px := 0; px < inner.Width; px++ {
			c := Blank
			if e.content != nil {
				vx, vy := px+e.offX, py+e.offY
				if vx < e.content.Width && vy < e.content.Height {
					c = e.content.Cell(vx, vy)
				}
			}
			dst.SetCell(inner.X+px, inner.Y+py, c)
		}
	}
}

// Scrollbars returns the vertical and horizontal scrollbar state.
func (e *Engine) Scrollbars() (vertical, horizontal Scrollbar) {
	mx, my := e.MaxOffset()
	u := e.Usable()
	vertical = Scrollbar{Visible: my > 0, Position: e.offY, Length: my, Viewport: u.Height}
	horizontal = Scrollbar{Visible: mx > 0, Position: e.offX, Length: mx, Viewport: u.Width}
	return vertical, horizontal
}
