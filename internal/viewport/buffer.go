// Package viewport renders a virtual cell buffer, larger than the screen,
// into a bounded area with scroll offsets and scrollbars.
package viewport

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Style is the styling of a single cell. It is copied verbatim between
// buffers.
type Style struct {
	Fg    lipgloss.Color
	Bg    lipgloss.Color
	Bold  bool
	Faint bool
}

// Cell is one terminal cell. The cell following a double width character
// has empty Content.
type Cell struct {
	Content string
	Style   Style
}

// Blank is an empty cell.
var Blank = Cell{Content: " "}

// Rect is a rectangle of cells.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rect has no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Inset shrinks the rect by n cells on every side.
func (r Rect) Inset(n int) Rect {
	r.X += n
	r.Y += n
	r.Width = max(r.Width-2*n, 0)
	r.Height = max(r.Height-2*n, 0)
	return r
}

// Buffer is a rectangular grid of cells.
type Buffer struct {
	Width, Height int
	cells         []Cell
}

// NewBuffer returns a buffer filled with blank cells.
func NewBuffer(width, height int) *Buffer {
	width, height = max(width, 0), max(height, 0)
	b := &Buffer{Width: width, Height: height, cells: make([]Cell, width*height)}
	for i := range b.cells {
		b.cells[i] = Blank
	}
	return b
}

// Area returns the rect covered by the buffer.
func (b *Buffer) Area() Rect {
	return Rect{Width: b.Width, Height: b.Height}
}

func (b *Buffer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Cell returns the cell at x, y, or a blank cell outside the buffer.
func (b *Buffer) Cell(x, y int) Cell {
	if !b.inside(x, y) {
		return Blank
	}
	return b.cells[y*b.Width+x]
}

// SetCell sets the cell at x, y. Writes outside the buffer are dropped.
func (b *Buffer) SetCell(x, y int, c Cell) {
	if b.inside(x, y) {
		b.cells[y*b.Width+x] = c
	}
}

// SetString writes s starting at x, y, clipped to limit cells, and returns
// the number of cells written. Double width characters that do not fit are
// replaced by a space.
func (b *Buffer) SetString(x, y int, s string, st Style, limit int) int {
	if limit <= 0 || y < 0 || y >= b.Height {
		return 0
	}
	written := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			if r == '\t' {
				r, w = ' ', 1
			} else {
				continue
			}
		}
		if written+w > limit {
			if written < limit {
				b.SetCell(x+written, y, Cell{Content: " ", Style: st})
				written++
			}
			break
		}
		b.SetCell(x+written, y, Cell{Content: string(r), Style: st})
		for i := 1; i < w; i++ {
			b.SetCell(x+written+i, y, Cell{Style: st})
		}
		written += w
	}
	return written
}

// Fill sets every cell of r to c.
func (b *Buffer) Fill(r Rect, c Cell) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			b.SetCell(x, y, c)
		}
	}
}

// Lines renders every row to a styled string.
func (b *Buffer) Lines() []string {
	styles := make(map[Style]lipgloss.Style)
	render := func(st Style, s string) string {
		if st == (Style{}) {
			return s
		}
		ls, ok := styles[st]
		if !ok {
			ls = lipgloss.NewStyle().Bold(st.Bold).Faint(st.Faint)
			if st.Fg != "" {
				ls = ls.Foreground(st.Fg)
			}
			if st.Bg != "" {
				ls = ls.Background(st.Bg)
			}
			styles[st] = ls
		}
		return ls.Render(s)
	}

	lines := make([]string, b.Height)
	for y := 0; y < b.Height; y++ {
		var (
			line strings.Builder
			run  strings.Builder
			cur  Style
		)
		flush := func() {
			if run.Len() > 0 {
				line.WriteString(render(cur, run.String()))
				run.Reset()
			}
		}
		for x := 0; x < b.Width; x++ {
			c := b.cells[y*b.Width+x]
			content := c.Content
			switch {
			case content == "":
				// continuation of a wide character that was emitted
				if x > 0 && runewidth.StringWidth(b.cells[y*b.Width+x-1].Content) > 1 {
					continue
				}
				content = " "
			case runewidth.StringWidth(content) > 1:
				// wide character cut off by the right edge or by a copy
				if x+1 >= b.Width || b.cells[y*b.Width+x+1].Content != "" {
					content = " "
				}
			}
			if c.Style != cur {
				flush()
				cur = c.Style
			}
			run.WriteString(content)
		}
		flush()
		lines[y] = line.String()
	}
	return lines
}

// String renders the buffer as newline separated rows.
func (b *Buffer) String() string {
	return strings.Join(b.Lines(), "\n")
}
